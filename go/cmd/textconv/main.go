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

// textconv converts text between character sets on the command
// line. It exists mostly as a debugging front end for the conversion
// pipeline: the same profiles an archive handle would build are
// exercised here one file at a time.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/archivetext/archivetext/go/bufferx"
	"github.com/archivetext/archivetext/go/log"
	"github.com/archivetext/archivetext/go/terrors"
	"github.com/archivetext/archivetext/go/textconv"
)

var (
	fromCharset string
	toCharset   string
	bestEffort  bool
	legacyUTF8  bool
	decompose   bool

	root = &cobra.Command{
		Use:   "textconv [file | -]",
		Short: "textconv converts a file between character sets.",
		Long: "textconv reads a file (or stdin when the argument is missing or \"-\"),\n" +
			"converts it from the --from charset to the --to charset, and writes the\n" +
			"result to stdout. Empty charset names mean the system charset.\n\n" +
			"When characters had to be substituted the converted output is still\n" +
			"written, but the exit status is nonzero so scripts can tell a clean\n" +
			"conversion from a degraded one.",
		Args: cobra.MaximumNArgs(1),
		RunE: run,
		PostRun: func(cmd *cobra.Command, args []string) {
			log.Flush()
		},
	}
)

func init() {
	root.Flags().StringVar(&fromCharset, "from", "", "source charset name (default: system charset)")
	root.Flags().StringVar(&toCharset, "to", "UTF-8", "target charset name")
	root.Flags().BoolVar(&bestEffort, "best-effort", false, "degrade to ASCII-plus-substitutions when no real conversion exists")
	root.Flags().BoolVar(&legacyUTF8, "legacy-utf8", false, "reinterpret UTF-8 written through a 16-bit wide-character type")
	root.Flags().BoolVar(&decompose, "decompose", false, "normalize Unicode input to NFD instead of NFC")
	log.RegisterFlags(root.PersistentFlags())
}

func run(cmd *cobra.Command, args []string) error {
	in := io.Reader(cmd.InOrStdin())
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	opts := textconv.Options{
		BestEffort: bestEffort,
		LegacyUTF8: legacyUTF8,
	}
	if decompose {
		opts.NormalizationForm = textconv.NormD
	}
	substituted, err := convertStream(cmd.OutOrStdout(), in, fromCharset, toCharset, opts)
	if err != nil {
		return err
	}
	if substituted {
		// Output was written; the exit status is the only signal.
		cmd.SilenceUsage = true
		return fmt.Errorf("conversion from %q to %q replaced characters", fromCharset, toCharset)
	}
	return nil
}

// convertStream converts all of r through a transient profile and
// writes the result to w. It reports whether substitutions were made.
func convertStream(w io.Writer, r io.Reader, from, to string, opts textconv.Options) (bool, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return false, err
	}
	p, err := textconv.NewProfile(from, to, opts)
	if err != nil {
		return false, err
	}
	defer p.Close()

	var dst bufferx.Buffer
	convErr := p.Convert(&dst, src)
	if convErr != nil && terrors.CodeOf(convErr) == terrors.OutOfMemory {
		return false, convErr
	}
	if convErr != nil {
		log.Warningf("converting %q to %q: %v", p.From, p.To, convErr)
	}
	if _, err := w.Write(dst.Bytes()); err != nil {
		return false, err
	}
	return convErr != nil, nil
}

func main() {
	if err := root.Execute(); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}
