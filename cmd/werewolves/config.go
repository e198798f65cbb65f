package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// cliFlags holds every --no-ssh/--no-web/--endpoint-style override named
// in spec.md §6. A zero value for any path/addr field means "use the
// config file's value (or its default)".
type cliFlags struct {
	configPath string
	noSSH      bool
	noWeb      bool
	sshEndpoint string
	webEndpoint string
	sshKeyDir   string
	userDB      string
}

func (f *cliFlags) validate() error {
	if f.noSSH && f.noWeb {
		return errors.New("both --no-ssh and --no-web were given; at least one transport must run")
	}
	return nil
}

// newCmd builds the single werewolves subcommand, layering flags over
// environment variables over viper defaults the same way the teacher's
// Seednode-partybox config.go does.
func newCmd(flags *cliFlags) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("WEREWOLVES")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "werewolves",
		Short:         "An SSH- and browser-playable One Night Werewolf server.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.validate(); err != nil {
				return err
			}
			return run(cmd.Context(), flags)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVar(&flags.configPath, "config", "", "path to a YAML config file overlaying the defaults (env: WEREWOLVES_CONFIG)")
	fs.BoolVar(&flags.noSSH, "no-ssh", false, "disable the SSH terminal transport (env: WEREWOLVES_NO_SSH)")
	fs.BoolVar(&flags.noWeb, "no-web", false, "disable the browser/SSE transport (env: WEREWOLVES_NO_WEB)")
	fs.StringVar(&flags.sshEndpoint, "endpoint", "", "SSH listen address, e.g. :2022 (env: WEREWOLVES_ENDPOINT)")
	fs.StringVar(&flags.webEndpoint, "web-endpoint", "", "HTTP listen address, e.g. :8080 (env: WEREWOLVES_WEB_ENDPOINT)")
	fs.StringVar(&flags.sshKeyDir, "ssh-key-dir", "", "directory containing ssh_host_rsa_key (env: WEREWOLVES_SSH_KEY_DIR)")
	fs.StringVar(&flags.userDB, "user-db", "", "path to the user public-key database JSON file (env: WEREWOLVES_USER_DB)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	return cmd
}
