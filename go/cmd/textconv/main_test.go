/*
Copyright 2026 The ArchiveText Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/archivetext/archivetext/go/textconv"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/golang/glog.(*fileSink).flushDaemon"))
}

func TestConvertStream(t *testing.T) {
	var out bytes.Buffer
	substituted, err := convertStream(&out, strings.NewReader("caf\xe9"),
		"ISO-8859-1", "UTF-8", textconv.Options{})
	require.NoError(t, err)
	assert.False(t, substituted)
	assert.Equal(t, "café", out.String())
}

func TestConvertStreamSubstitutes(t *testing.T) {
	var out bytes.Buffer
	substituted, err := convertStream(&out, strings.NewReader("snow☃"),
		"UTF-8", "ISO-8859-1", textconv.Options{})
	require.NoError(t, err)
	assert.True(t, substituted)
	assert.Equal(t, "snow?", out.String())
}

func TestConvertStreamUnsupported(t *testing.T) {
	var out bytes.Buffer
	_, err := convertStream(&out, strings.NewReader("x"),
		"X-CUSTOM", "KOI8-R", textconv.Options{})
	require.Error(t, err)
	assert.Empty(t, out.Bytes())

	substituted, err := convertStream(&out, strings.NewReader("x\xff"),
		"X-CUSTOM", "KOI8-R", textconv.Options{BestEffort: true})
	require.NoError(t, err)
	assert.True(t, substituted)
	assert.Equal(t, "x?", out.String())
}

func TestRunCommand(t *testing.T) {
	var out bytes.Buffer
	root.SetIn(strings.NewReader("nothing fancy"))
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--from", "UTF-8", "--to", "UTF-8"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "nothing fancy", out.String())
}
