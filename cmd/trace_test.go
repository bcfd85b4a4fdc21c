// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"testing"

	"github.com/Thermoquad/makcuflash/pkg/transport"
	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMemFs(t *testing.T) afero.Fs {
	t.Helper()
	saved := appFs
	t.Cleanup(func() { appFs = saved })
	appFs = afero.NewMemMapFs()
	return appFs
}

func TestTrace(t *testing.T) {
	fs := useMemFs(t)

	var capture bytes.Buffer
	enc := cbor.NewEncoder(&capture)
	require.NoError(t, enc.Encode(transport.Record{Dir: transport.DirTx, Data: []byte{0xE0}}))
	require.NoError(t, enc.Encode(transport.Record{Elapsed: 2500, Dir: transport.DirRx, Data: []byte{0x1F}, Requested: 1, TimeoutMS: 5000}))
	require.NoError(t, enc.Encode(transport.Record{Elapsed: 3000, Dir: transport.DirRx, Requested: 1, TimeoutMS: 1000, Err: "read timeout"}))
	require.NoError(t, afero.WriteFile(fs, "upload.cbor", capture.Bytes(), 0o644))

	var out bytes.Buffer
	traceCmd.SetOut(&out)
	t.Cleanup(func() { traceCmd.SetOut(nil) })

	require.NoError(t, runTrace(traceCmd, []string{"upload.cbor"}))

	text := out.String()
	assert.Contains(t, text, "TX ERASE (0xE0)")
	assert.Contains(t, text, "RX NACK (0x1F)")
	assert.Contains(t, text, "error: read timeout")
	assert.Contains(t, text, "3 records: 1 writes, 2 reads, 1 errors")
}

func TestTrace_MissingFile(t *testing.T) {
	useMemFs(t)

	err := runTrace(traceCmd, []string{"missing.cbor"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open capture")
}
