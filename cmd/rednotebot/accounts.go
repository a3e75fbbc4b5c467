package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abdulachik/rednotebot/internal/app"
	"github.com/abdulachik/rednotebot/internal/config"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Show and change account persona assignments",
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts and the personas they are assigned",
	RunE:  runAccountsList,
}

var accountsSetCmd = &cobra.Command{
	Use:   "set <account> <persona>",
	Short: "Assign a persona to an account",
	Args:  cobra.ExactArgs(2),
	RunE:  runAccountsSet,
}

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List the personas in the active catalog",
	RunE:  runPersonas,
}

func init() {
	accountsCmd.AddCommand(accountsListCmd, accountsSetCmd)
	rootCmd.AddCommand(accountsCmd, personasCmd)
}

func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create app: %w", err)
	}
	return a, nil
}

func runAccountsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	assigned, err := a.Accounts.Load(ctx)
	if err != nil {
		return err
	}

	personas := a.Accounts.Personas()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ACCOUNT\tPERSONA\tNAME")
	for _, id := range a.AccountIDs() {
		p := personas.Get(assigned[id])
		name := p.Name
		if p.ID != assigned[id] {
			name += " (default, assigned persona unknown)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", id, assigned[id], name)
	}
	return w.Flush()
}

func runAccountsSet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	accountID := strings.ToUpper(args[0])
	if err := a.Accounts.Update(ctx, accountID, args[1]); err != nil {
		return err
	}
	if !a.Config.FileMode() {
		fmt.Println("note: memory mode, the assignment is not persisted")
	}
	fmt.Printf("Account %s now uses persona %s\n", accountID, args[1])
	return nil
}

func runPersonas(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	personas := a.Accounts.Personas()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Catalog: %s\n\n", a.Catalog.Name)
	fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
	for _, p := range personas.List() {
		marker := ""
		if p.ID == personas.Default().ID {
			marker = " *"
		}
		fmt.Fprintf(w, "%s%s\t%s\t%s\n", p.ID, marker, p.Name, p.Description)
	}
	return w.Flush()
}
