package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/akinalp/rollcall/models"
	"github.com/akinalp/rollcall/services"
)

func tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <discord-name>",
		Short: "Mint an API bearer token for a registered member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.close()

			if err := rt.cfg.JWT.RequireSecret(); err != nil {
				return err
			}

			auth := services.NewAuthService(rt.store.Members, rt.cfg.JWT.Secret, rt.cfg.JWT.TokenExpiry, rt.cfg.Gateway.KeyHash)
			token, member, err := auth.IssueToken(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "token for %s (%s), valid %s\n", member.DiscordName, member.ID, rt.cfg.JWT.TokenExpiry)
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

func hashKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key <gateway-key>",
		Short: "Print the bcrypt hash to put in GATEWAY_KEY_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := services.HashGatewayKey(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func memberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage the member roster",
	}
	cmd.AddCommand(memberAddCmd())
	cmd.AddCommand(memberListCmd())
	cmd.AddCommand(memberImportCmd())
	return cmd
}

func memberAddCmd() *cobra.Command {
	var (
		name    string
		isAdmin bool
	)

	cmd := &cobra.Command{
		Use:   "add <discord-name>",
		Short: "Register a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.close()

			if name == "" {
				name = args[0]
			}

			svc := services.NewMemberService(rt.store.Members, rt.logger)
			member, err := svc.RegisterMember(cmd.Context(), models.SystemActor(), &models.RegisterMemberRequest{
				Name:        name,
				DiscordName: args[0],
				IsAdmin:     isAdmin,
			})
			var conflict *services.ConflictError
			if errors.As(err, &conflict) {
				return fmt.Errorf("%s is already registered as member %s", conflict.Existing.DiscordName, conflict.Existing.ID)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s)\n", member.DiscordName, member.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to the discord name)")
	cmd.Flags().BoolVar(&isAdmin, "admin", false, "grant administrative capability")
	return cmd
}

func memberListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.close()

			members, err := services.NewQueryService(rt.store).ListMembers(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(members)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DISCORD NAME\tNAME\tADMIN\tIN ROTATION\tID")
			for _, m := range members {
				fmt.Fprintf(tw, "%s\t%s\t%t\t%t\t%s\n", m.DiscordName, m.Name, m.IsAdmin, m.InRotation, m.ID)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func memberImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <roster.yaml>",
		Short: "Register every member of a YAML roster, skipping existing handles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open roster: %w", err)
			}
			defer f.Close()

			entries, err := services.ParseRoster(f)
			if err != nil {
				return err
			}

			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.close()

			svc := services.NewMemberService(rt.store.Members, rt.logger)
			result, err := svc.ImportRoster(cmd.Context(), models.SystemActor(), entries)
			if result != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "created %d, already registered %d\n", len(result.Created), len(result.Existing))
			}
			return err
		},
	}
}
