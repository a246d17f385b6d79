// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"novelrt.io/x/sdk/pkg/oci"
)

var (
	fileModeAnnotation = oci.Annotation("file-mode")
	modTimeAnnotation  = oci.Annotation("file-modtime")
	fileNameAnnotation = oci.Annotation("file-name")
)

// fileInfo travels with each top-level layer so that executables stay executable
// after a round trip through the registry.
type fileInfo struct {
	mode    os.FileMode
	modTime time.Time
	name    string
}

func newFileInfo(info os.FileInfo) *fileInfo {
	return &fileInfo{mode: info.Mode().Perm(), modTime: info.ModTime(), name: info.Name()}
}

func (fi *fileInfo) annotations() map[string]string {
	return map[string]string{
		fileModeAnnotation: strconv.FormatUint(uint64(fi.mode), 8),
		modTimeAnnotation:  fi.modTime.UTC().Format(time.RFC3339),
		fileNameAnnotation: fi.name,
	}
}

func (fi *fileInfo) apply(root string) error {
	p := filepath.Join(root, fi.name)
	if err := os.Chmod(p, fi.mode); err != nil {
		return err
	}
	return os.Chtimes(p, fi.modTime, fi.modTime)
}

func fileInfoFromAnnotations(annotations map[string]string) (*fileInfo, error) {
	get := func(key string) (string, error) {
		v, ok := annotations[key]
		if !ok {
			return "", fmt.Errorf("missing %s annotation", key)
		}
		return v, nil
	}

	modeStr, err := get(fileModeAnnotation)
	if err != nil {
		return nil, err
	}
	mode, err := strconv.ParseUint(modeStr, 8, 32)
	if err != nil {
		return nil, err
	}
	modTimeStr, err := get(modTimeAnnotation)
	if err != nil {
		return nil, err
	}
	modTime, err := time.Parse(time.RFC3339, modTimeStr)
	if err != nil {
		return nil, err
	}
	name, err := get(fileNameAnnotation)
	if err != nil {
		return nil, err
	}
	return &fileInfo{mode: os.FileMode(mode), modTime: modTime, name: name}, nil
}
