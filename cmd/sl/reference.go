package main

import (
	"context"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"stageline/internal/app"
	"stageline/internal/domain"
)

func employeeCmd() *cobra.Command {
	emp := &cobra.Command{Use: "employee", Short: "Manage the employee list"}
	emp.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List employees",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), newLogger(), func(ctx context.Context, rt *app.Runtime) error {
				items := rt.Workspace.Catalog.Employees()
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := newTable()
				tw.AppendHeader(table.Row{"ID", "Name"})
				for _, e := range items {
					tw.AppendRow(table.Row{e.ID, e.DisplayName()})
				}
				tw.Render()
				return nil
			})
		},
	})

	var first, last string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add an employee",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), newLogger(), func(ctx context.Context, rt *app.Runtime) error {
				e, err := rt.Workspace.AddEmployee(ctx, domain.Employee{FirstName: first, LastName: last})
				if err != nil {
					return err
				}
				return printJSONOrTable(e)
			})
		},
	}
	add.Flags().StringVar(&first, "first-name", "", "first name")
	add.Flags().StringVar(&last, "last-name", "", "last name")
	_ = add.MarkFlagRequired("first-name")
	emp.AddCommand(add)
	return emp
}

func locationCmd() *cobra.Command {
	loc := &cobra.Command{Use: "location", Short: "Manage the location list"}
	loc.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), newLogger(), func(ctx context.Context, rt *app.Runtime) error {
				items := rt.Workspace.Catalog.Locations()
				if viper.GetBool("json") {
					return printJSON(items)
				}
				names := domain.DisplayNames(items)
				tw := newTable()
				tw.AppendHeader(table.Row{"ID", "Location", "Activity"})
				for _, l := range items {
					tw.AppendRow(table.Row{l.ID, names[l.ID], l.Activity})
				}
				tw.Render()
				return nil
			})
		},
	})

	var site, activity string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a location",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), newLogger(), func(ctx context.Context, rt *app.Runtime) error {
				l, err := rt.Workspace.AddLocation(ctx, domain.Location{SiteName: site, Activity: activity})
				if err != nil {
					return err
				}
				return printJSONOrTable(l)
			})
		},
	}
	add.Flags().StringVar(&site, "site", "", "site name")
	add.Flags().StringVar(&activity, "activity", "", "activity, shown when site names repeat")
	_ = add.MarkFlagRequired("site")
	loc.AddCommand(add)
	return loc
}

func schemaCmd() *cobra.Command {
	sch := &cobra.Command{Use: "schema", Short: "Inspect form schemas"}
	sch.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the fields the acting role edits",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), newLogger(), func(ctx context.Context, rt *app.Runtime) error {
				fields := rt.Workspace.Engine.Schema(actingRole())
				if viper.GetBool("json") {
					return printJSON(fields)
				}
				tw := newTable()
				tw.AppendHeader(table.Row{"Name", "Label", "Type", "Required", "Options"})
				for _, f := range fields {
					opts := strings.Join(f.Options, ", ")
					if f.Source != "" {
						opts = "from " + string(f.Source)
					}
					tw.AppendRow(table.Row{f.Name, f.Label, f.Kind, f.Required, opts})
				}
				tw.Render()
				return nil
			})
		},
	})
	return sch
}
