// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package sdkremote

import (
	"context"
	"errors"

	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"
)

var errReadOnlyStore = errors.New("registry credentials are read-only here. use 'nrt login' to store new ones")

// readOnlyStore lets requests use stored credentials without ever writing back to
// the user's docker config.
type readOnlyStore struct {
	credentials.Store
}

func (r readOnlyStore) Put(context.Context, string, auth.Credential) error {
	return errReadOnlyStore
}

func (r readOnlyStore) Delete(context.Context, string) error {
	return errReadOnlyStore
}

var _ credentials.Store = readOnlyStore{}
