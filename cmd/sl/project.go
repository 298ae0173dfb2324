package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"stageline/internal/access"
	"stageline/internal/app"
	"stageline/internal/domain"
	"stageline/internal/engine"
	"stageline/internal/schema"
)

func projectCmd() *cobra.Command {
	prj := &cobra.Command{Use: "project", Short: "Manage projects"}
	prj.AddCommand(projectListCmd())
	prj.AddCommand(projectShowCmd())
	prj.AddCommand(projectSubmitCmd("create", "Create a project (survey, or admin with the access secret)", domain.ActionSave, true))
	prj.AddCommand(projectSubmitCmd("save", "Save changes without moving the project", domain.ActionSave, false))
	prj.AddCommand(projectSubmitCmd("forward", "Save and hand the project to the next team", domain.ActionForward, false))
	prj.AddCommand(projectSubmitCmd("complete", "Save and close the project (pm)", domain.ActionComplete, false))
	prj.AddCommand(projectDeleteCmd())
	return prj
}

func projectListCmd() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the projects waiting for the acting role",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), newLogger(), func(ctx context.Context, rt *app.Runtime) error {
				role := actingRole()
				items := rt.Workspace.Catalog.Visible(role, search)
				if viper.GetBool("json") {
					return printJSON(items)
				}
				names := domain.DisplayNames(rt.Workspace.Catalog.Locations())
				p := numberPrinter(rt)
				tw := newTable()
				header := table.Row{"ID", "Project", "Status", "Location", "Budget", "Updated"}
				if role != domain.RoleAdmin {
					header = append(header, "Submitted by")
				}
				tw.AppendHeader(header)
				for _, v := range items {
					location := "-"
					if v.LocationID != nil {
						location = names[*v.LocationID]
					}
					budget := "-"
					if v.Budget != nil {
						budget = p.Sprintf("%.2f", *v.Budget)
					}
					row := table.Row{v.ID, v.Name, v.Status.Label(), location, budget, v.UpdatedAt}
					if role != domain.RoleAdmin {
						row = append(row, domain.EmployeeName(app.Submitter(role, v)))
					}
					tw.AppendRow(row)
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "name filter (admin)")
	return cmd
}

func projectShowCmd() *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a project through the acting role's form",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), newLogger(), func(ctx context.Context, rt *app.Runtime) error {
				v, err := rt.Workspace.Engine.Get(ctx, id)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(v)
				}
				renderForm(rt, actingRole(), v)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "project id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func renderForm(rt *app.Runtime, role domain.Role, v domain.ProjectView) {
	form := app.NewForm(rt.Workspace.Engine.Registry, role)
	form.Open(&v)
	tw := newTable()
	tw.SetTitle(fmt.Sprintf("#%d %s: %s", v.ID, v.Name, v.Status.Label()))
	tw.AppendHeader(table.Row{"Field", "Name", "Value"})
	employees := map[string]string{}
	for _, e := range rt.Workspace.Catalog.Employees() {
		employees[fmt.Sprint(e.ID)] = e.DisplayName()
	}
	locations := map[string]string{}
	for id, name := range domain.DisplayNames(rt.Workspace.Catalog.Locations()) {
		locations[fmt.Sprint(id)] = name
	}
	for _, f := range form.Fields {
		value := form.Value(f.Name)
		switch f.Source {
		case schema.SourceEmployees:
			if name, ok := employees[value]; ok {
				value = name
			}
		case schema.SourceLocations:
			if name, ok := locations[value]; ok {
				value = name
			}
		}
		label := f.Label
		if f.Required {
			label += " *"
		}
		tw.AppendRow(table.Row{label, f.Name, value})
	}
	tw.Render()
	if actions := form.Actions(); len(actions) > 0 {
		fmt.Println("Actions:", actions)
	}
}

func projectSubmitCmd(use, short string, action domain.Action, create bool) *cobra.Command {
	var (
		id      int64
		sets    []string
		clears  []string
		files   []string
		forward bool
		secret  string
	)
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), newLogger(), func(ctx context.Context, rt *app.Runtime) error {
				role := actingRole()
				form := app.NewForm(rt.Workspace.Engine.Registry, role)
				if !create {
					v, err := rt.Workspace.Engine.Get(ctx, id)
					if err != nil {
						return err
					}
					form.Open(&v)
				}
				for _, kv := range sets {
					name, raw, ok := strings.Cut(kv, "=")
					if !ok {
						return fmt.Errorf("--set expects field=value, got %q", kv)
					}
					form.SetValue(name, raw)
				}
				for _, name := range clears {
					form.RemoveFile(name)
				}
				for _, kv := range files {
					name, path, ok := strings.Cut(kv, "=")
					if !ok {
						return fmt.Errorf("--file expects field=path, got %q", kv)
					}
					f, err := os.Open(path)
					if err != nil {
						return err
					}
					defer f.Close()
					form.Stage(name, filepath.Base(path), f)
				}
				act := action
				if create && forward {
					act = domain.ActionForward
				}
				if create && role == domain.RoleAdmin && secret == "" {
					s, err := rt.Workspace.Engine.Gate.Prompt(bufio.NewReader(os.Stdin), os.Stderr, "Access secret: ")
					if err != nil {
						return err
					}
					secret = s
				}
				v, err := rt.Workspace.Save(ctx, form.Request(act, secret))
				if err != nil {
					printValidation(err)
					return err
				}
				if viper.GetBool("json") {
					return printJSON(v)
				}
				renderForm(rt, role, v)
				return nil
			})
		},
	}
	if !create {
		cmd.Flags().Int64Var(&id, "id", 0, "project id")
		_ = cmd.MarkFlagRequired("id")
	} else {
		cmd.Flags().BoolVar(&forward, "forward", false, "forward to the next team right away")
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value, repeatable")
	cmd.Flags().StringArrayVar(&clears, "clear", nil, "file field to empty, repeatable")
	cmd.Flags().StringArrayVar(&files, "file", nil, "field=path of a file to upload, repeatable")
	cmd.Flags().StringVar(&secret, "secret", "", "access secret (prompted for admin when omitted)")
	return cmd
}

func printValidation(err error) {
	var ve *engine.ValidationError
	if !errors.As(err, &ve) || viper.GetBool("json") {
		return
	}
	tw := newTable()
	tw.SetOutputMirror(os.Stderr)
	tw.AppendHeader(table.Row{"Field", "Problem"})
	for _, f := range ve.Result.Failures {
		tw.AppendRow(table.Row{f.Field, f.Message})
	}
	tw.Render()
}

func projectDeleteCmd() *cobra.Command {
	var (
		id     int64
		yes    bool
		secret string
	)
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a project (admin, needs the access secret)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), newLogger(), func(ctx context.Context, rt *app.Runtime) error {
				role := actingRole()
				eng := rt.Workspace.Engine
				v, err := eng.Get(ctx, id)
				if err != nil {
					return err
				}
				if err := access.CheckDeletable(role, v.Project); err != nil {
					return err
				}
				in := bufio.NewReader(os.Stdin)
				if secret == "" {
					secret, err = eng.Gate.Prompt(in, os.Stderr, "Access secret: ")
					if err != nil {
						return err
					}
				} else if err := eng.Gate.Verify(secret); err != nil {
					return err
				}
				if !yes {
					fmt.Fprintf(os.Stderr, "Delete project #%d %q? This cannot be undone. [y/N] ", v.ID, v.Name)
					answer, _ := in.ReadString('\n')
					answer = strings.ToLower(strings.TrimSpace(answer))
					if answer != "y" && answer != "yes" {
						fmt.Println("Deletion cancelled.")
						return nil
					}
				}
				err = rt.Workspace.Delete(ctx, engine.DeleteRequest{
					Role:      role,
					ProjectID: v.ID,
					Secret:    secret,
					Confirmed: true,
				})
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]any{"deleted": v.ID})
				}
				fmt.Printf("Deleted project #%d %s\n", v.ID, v.Name)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "project id")
	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation question")
	cmd.Flags().StringVar(&secret, "secret", "", "access secret (prompted when omitted)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
