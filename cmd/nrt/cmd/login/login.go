// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package login

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"novelrt.io/x/sdk/pkg/sdkconfig"
	"novelrt.io/x/sdk/pkg/sdkconfig/sdkremote"
	"oras.land/oras-go/v2/registry/remote/auth"
)

type loginCmd struct {
	username, password, netrcHost, netrcFile string
	passwordStdin, useNativeStore            bool
}

func Cmd(config *sdkconfig.Config) *cobra.Command {
	c := &loginCmd{}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "authenticate to the engine registry",
		Long: "Authenticate to the registry. This will modify the auth config file. " +
			"(The registry and auth file are the ones specified in " +
			"novelrt-config.yaml or the corresponding env vars, or the defaults if none are set)",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := c.get(cmd.InOrStdin())
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			if err := sdkremote.Login(cmd.Context(), config, *creds, sdkremote.LoginOpts{UseNativeStore: c.useNativeStore}); err != nil {
				return err
			}

			cmd.Println("Successfully logged in.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&c.username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&c.password, "password", "p", "", "password")
	cmd.Flags().BoolVar(&c.passwordStdin, "password-stdin", false, "Take the password from stdin")
	cmd.Flags().BoolVar(&c.useNativeStore, "use-native-cred-store", false, "store credentials in system's credential store instead of plaintext in the auth config file")
	cmd.Flags().StringVarP(&c.netrcHost, "netrc", "n", "", "log in using username and password of a netrc host (machine)")
	cmd.Flags().StringVar(&c.netrcFile, "netrc-file", "", "netrc file to read (defaults to ~/.netrc)")

	return cmd
}

func (c *loginCmd) get(stdin io.Reader) (*auth.Credential, error) {
	if c.netrcHost != "" {
		if c.username != "" || c.passwordStdin {
			return nil, fmt.Errorf("netrc can't be used with other options")
		}

		path := c.netrcFile
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			path = sdkremote.DefaultNetrcPath(home)
		}
		return sdkremote.NetrcCredential(path, c.netrcHost)
	}

	if c.username == "" {
		return nil, fmt.Errorf("username is required")
	}

	if c.passwordStdin && c.password != "" {
		return nil, fmt.Errorf("--password and --password-stdin cannot be used together")
	}

	if !c.passwordStdin && c.password == "" {
		return nil, fmt.Errorf("password must be provided via --password or --password-stdin")
	}

	if c.password != "" {
		return &auth.Credential{
			Username: c.username,
			Password: c.password,
		}, nil
	}

	p, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read password from stdin: %w", err)
	}
	return &auth.Credential{
		Username: c.username,
		Password: strings.TrimRight(string(p), "\r\n"),
	}, nil
}
