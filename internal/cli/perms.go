package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arkival/trellis/internal/permission"
)

// PermsOptions holds flags shared by the perms subcommands.
type PermsOptions struct {
	*RootOptions
	Admin bool // interpret literals as administrative permissions
}

// NewPermsCommand creates the perms command group.
func NewPermsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PermsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "perms",
		Short: "Parse and evaluate permission literals",
	}

	cmd.PersistentFlags().BoolVar(&opts.Admin, "admin", false, "treat literals as administrative permissions")

	cmd.AddCommand(newPermsParseCommand(opts))
	cmd.AddCommand(newPermsCheckCommand(opts))

	return cmd
}

func (o *PermsOptions) kind() permission.Kind {
	if o.Admin {
		return permission.Administrative
	}
	return permission.ObjectAccess
}

// ParseResult is the JSON payload of perms parse.
type ParseResult struct {
	Canonical string            `json:"canonical"`
	Entries   []ParseResultRule `json:"entries"`
}

// ParseResultRule is one code-to-principal grant.
type ParseResultRule struct {
	Code      string `json:"code"`
	Principal string `json:"principal"`
}

func newPermsParseCommand(opts *PermsOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <literal>",
		Short: "Parse a permission literal and print its canonical form",
		Long: `Parse a permission literal such as "CR knora-admin:Creator|V knora-admin:KnownUser"
and print the canonical serialization plus the individual grants.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPermsParse(opts, args[0], cmd)
		},
	}
}

func runPermsParse(opts *PermsOptions, literal string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	kind := opts.kind()
	lit, err := permission.Parse(kind, literal)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodePermission, err.Error(), nil)
	}

	result := ParseResult{Canonical: lit.Format()}
	for _, entry := range lit.Entries {
		result.Entries = append(result.Entries, ParseResultRule{
			Code:      permission.Token(kind, entry.Code),
			Principal: entry.Principal,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintln(formatter.Writer, result.Canonical)
	for _, rule := range result.Entries {
		fmt.Fprintf(formatter.Writer, "  %-2s %s\n", rule.Code, rule.Principal)
	}
	return nil
}

// CheckOptions holds flags for perms check.
type CheckOptions struct {
	*PermsOptions
	User          string
	Groups        []string
	Project       string
	ProjectAdmin  bool
	SystemAdmin   bool
	Creator       string
	EntityProject string
	Entity        string
	Required      string
}

// CheckResult is the JSON payload of perms check.
type CheckResult struct {
	Granted  string `json:"granted,omitempty"`
	Required string `json:"required"`
	Allowed  bool   `json:"allowed"`
}

func newPermsCheckCommand(permsOpts *PermsOptions) *cobra.Command {
	opts := &CheckOptions{PermsOptions: permsOpts}

	cmd := &cobra.Command{
		Use:   "check <literal>",
		Short: "Evaluate a permission literal for a principal",
		Long: `Evaluate a permission literal against a principal described by flags
and report whether the required permission is granted.

An empty --user makes the principal anonymous. The entity's creator and
owning project come from --creator and --entity-project.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPermsCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.User, "user", "", "user IRI (empty for anonymous)")
	cmd.Flags().StringSliceVar(&opts.Groups, "group", nil, "group IRI the user belongs to (repeatable)")
	cmd.Flags().StringVar(&opts.Project, "project", "", "project IRI the user is a member of")
	cmd.Flags().BoolVar(&opts.ProjectAdmin, "project-admin", false, "user administers --project")
	cmd.Flags().BoolVar(&opts.SystemAdmin, "system-admin", false, "user is a system administrator")
	cmd.Flags().StringVar(&opts.Creator, "creator", "", "entity creator IRI")
	cmd.Flags().StringVar(&opts.EntityProject, "entity-project", "", "entity's owning project IRI")
	cmd.Flags().StringVar(&opts.Entity, "entity", "", "entity IRI, for error context")
	cmd.Flags().StringVarP(&opts.Required, "required", "r", "V", "required permission token (RV|V|M|D|CR or PM|PA|SA)")

	return cmd
}

func runPermsCheck(opts *CheckOptions, literal string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	kind := opts.kind()
	lit, err := permission.Parse(kind, literal)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodePermission, err.Error(), nil)
	}
	required, ok := permission.ParseCode(kind, opts.Required)
	if !ok {
		return formatter.Fail(ExitCommandError, ErrCodePermission,
			fmt.Sprintf("unknown %s permission token %q", kind, opts.Required), nil)
	}

	principal := buildPrincipal(opts)
	meta := permission.EntityMeta{
		IRI:     opts.Entity,
		Creator: opts.Creator,
		Project: opts.EntityProject,
	}

	granted, has := permission.Effective(lit, meta, principal)
	result := CheckResult{
		Required: permission.Token(kind, required),
		Allowed:  has && granted >= required,
	}
	if has {
		result.Granted = permission.Token(kind, granted)
	}
	formatter.VerboseLog("Effective permission: %s (granted=%v)", result.Granted, has)

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else if result.Allowed {
		fmt.Fprintf(formatter.Writer, "allowed: %s >= %s\n", result.Granted, result.Required)
	} else if has {
		fmt.Fprintf(formatter.Writer, "denied: %s < %s\n", result.Granted, result.Required)
	} else {
		fmt.Fprintf(formatter.Writer, "denied: no permission granted\n")
	}

	if !result.Allowed {
		return NewExitError(ExitFailure, "permission denied")
	}
	return nil
}

func buildPrincipal(opts *CheckOptions) permission.Principal {
	if opts.User == "" && !opts.SystemAdmin {
		return permission.Anonymous()
	}
	p := permission.Principal{
		UserIRI:       opts.User,
		Authenticated: true,
		SystemAdmin:   opts.SystemAdmin,
	}
	if len(opts.Groups) > 0 {
		p.Groups = make(map[string]bool, len(opts.Groups))
		for _, g := range opts.Groups {
			p.Groups[g] = true
		}
	}
	if opts.Project != "" {
		p.Projects = map[string]permission.ProjectRole{
			opts.Project: {Admin: opts.ProjectAdmin},
		}
	}
	return p
}
