// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package sdkremote

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"novelrt.io/x/sdk/pkg/sdkconfig"
)

const expectedSuccessBody = "okdokey"

type fakeRegistry struct {
	t *testing.T
}

func (f *fakeRegistry) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	assert.Equal(f.t, sdkconfig.GetUserAgent(), r.UserAgent(), "wrong user-agent")

	username, password, ok := r.BasicAuth()
	if !ok {
		w.Header().Set("WWW-Authenticate", `Basic realm="test"`)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if username == "meep" && password == "meep!" {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(expectedSuccessBody))
	} else {
		http.Error(w, "wrong username/password", http.StatusUnauthorized)
	}
}

func TestRemoteUsesAuthConfig(t *testing.T) {
	server := httptest.NewServer(&fakeRegistry{t})
	t.Cleanup(server.Close)
	host := strings.TrimPrefix(server.URL, "http://")

	authFile := filepath.Join(t.TempDir(), "config.json")
	encoded := base64.StdEncoding.EncodeToString([]byte("meep:meep!"))
	require.NoError(t, os.WriteFile(authFile, []byte(fmt.Sprintf(`{"auths":{%q:{"auth":%q}}}`, host, encoded)), 0o600))

	home := t.TempDir()
	t.Setenv(sdkconfig.RegistryEnvVar, host)
	t.Setenv(sdkconfig.RegistryAuthEnvVar, authFile)
	t.Setenv(sdkconfig.InsecureRegistryEnvVar, "true")
	config, err := sdkconfig.GetWithCustomHome(home)
	require.NoError(t, err)

	r, err := NewFromConfig(config)
	require.NoError(t, err)
	assert.True(t, r.Insecure)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/v2/", nil)
	require.NoError(t, err)
	resp, err := r.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, expectedSuccessBody, string(body))
}

func TestRegistryHost(t *testing.T) {
	for in, want := range map[string]string{
		"ghcr.io/novelrt":         "ghcr.io",
		"https://ghcr.io/novelrt": "ghcr.io",
		"localhost:5000":          "localhost:5000",
	} {
		got, err := RegistryHost(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}

func TestNetrcCredential(t *testing.T) {
	p := DefaultNetrcPath(t.TempDir())
	require.NoError(t, os.WriteFile(p, []byte("machine ghcr.io\n  login octocat\n  password hunter2\n"), 0o600))

	creds, err := NetrcCredential(p, "ghcr.io")
	require.NoError(t, err)
	assert.Equal(t, "octocat", creds.Username)
	assert.Equal(t, "hunter2", creds.Password)

	_, err = NetrcCredential(p, "example.com")
	assert.Error(t, err)
}
