// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package sdkremote

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/jdx/go-netrc"
	"novelrt.io/x/sdk/pkg/sdkconfig"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"
)

type LoginOpts struct {
	UseNativeStore bool
}

// Login verifies creds against the configured registry and stores them in the
// configured auth file, or docker's config.json when none is set.
func Login(ctx context.Context, config *sdkconfig.Config, creds auth.Credential, opts LoginOpts) error {
	storeOpts := credentials.StoreOptions{
		AllowPlaintextPut:        true,
		DetectDefaultNativeStore: opts.UseNativeStore,
	}

	var ds *credentials.DynamicStore
	var err error
	if config.RegistryAuthPath != "" {
		ds, err = credentials.NewStore(config.RegistryAuthPath, storeOpts)
	} else {
		ds, err = credentials.NewStoreFromDocker(storeOpts)
	}
	slog.Debug("login parameters", "auth-config-path", config.RegistryAuthPath, "registry", config.Registry)
	if err != nil {
		return err
	}

	host, err := RegistryHost(config.Registry)
	if err != nil {
		return err
	}
	reg, err := remote.NewRegistry(host)
	if err != nil {
		return err
	}
	reg.PlainHTTP = config.Insecure
	return credentials.Login(ctx, ds, reg, creds)
}

// RegistryHost strips any scheme and repository path from a registry reference.
func RegistryHost(registry string) (string, error) {
	if !strings.HasPrefix(registry, "http://") && !strings.HasPrefix(registry, "https://") {
		registry = "http://" + registry
	}
	u, err := url.Parse(registry)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid registry %q", registry)
	}
	return u.Host, nil
}

// NetrcCredential reads the login of a machine from a netrc file.
func NetrcCredential(netrcPath, host string) (*auth.Credential, error) {
	n, err := netrc.Parse(netrcPath)
	if err != nil {
		return nil, err
	}

	machine := n.Machine(host)
	if machine == nil {
		return nil, fmt.Errorf("no machine %q in %s", host, netrcPath)
	}
	return &auth.Credential{
		Username: machine.Get("login"),
		Password: machine.Get("password"),
	}, nil
}

func DefaultNetrcPath(home string) string {
	return filepath.Join(home, ".netrc")
}
