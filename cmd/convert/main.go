// Command convert transforms a document file between the stored rich text
// format and the editor format.
//
//	convert -in doc.json -direction to-target
//	convert -in editor.json -direction to-source -policy field.yaml
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"rich-text-bridge/pkg/policy"
	"rich-text-bridge/pkg/richtext"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
)

const (
	directionToTarget = "to-target"
	directionToSource = "to-source"
)

var (
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed, color.Bold)
	okColor   = color.New(color.FgGreen)
)

// stderrLogger reports converter diagnostics on stderr.
type stderrLogger struct {
	verbose bool
}

func (l stderrLogger) Debug(module, message string, details map[string]interface{}) {
	if l.verbose {
		fmt.Fprintf(os.Stderr, "[%s] %s %v\n", module, message, details)
	}
}

func (l stderrLogger) Warn(module, message string, details map[string]interface{}) {
	warnColor.Fprintf(os.Stderr, "[%s] %s %v\n", module, message, details)
}

func main() {
	in := flag.String("in", "-", "input file, - for stdin")
	direction := flag.String("direction", directionToTarget, "to-target or to-source")
	policyPath := flag.String("policy", "", "field configuration (YAML or JSON) applied to to-source output")
	native := flag.Bool("native", false, "emit native embed nodes instead of placeholder text")
	maxDepth := flag.Int("max-depth", 0, "nesting limit, 0 for the default, negative to disable")
	dump := flag.Bool("dump", false, "dump the parsed input tree to stderr")
	stats := flag.Bool("stats", false, "print document statistics to stderr")
	verbose := flag.Bool("v", false, "verbose diagnostics")
	flag.Parse()

	if err := run(*in, *direction, *policyPath, *native, *maxDepth, *dump, *stats, *verbose, os.Stdout); err != nil {
		errColor.Fprintf(os.Stderr, "convert: %v\n", err)
		os.Exit(1)
	}
}

func run(in, direction, policyPath string, native bool, maxDepth int, dump, stats, verbose bool, out io.Writer) error {
	data, err := readInput(in)
	if err != nil {
		return err
	}

	conv := richtext.NewConverter(
		richtext.WithMaxDepth(maxDepth),
		richtext.WithNativeEmbeds(native),
		richtext.WithLogger(stderrLogger{verbose: verbose}),
	)

	var result interface{}
	switch direction {
	case directionToTarget:
		doc, err := richtext.ParseSource(data)
		if err != nil {
			return err
		}
		if dump {
			spew.Fdump(os.Stderr, doc)
		}
		if stats {
			printStats(doc)
		}
		if result, err = conv.ToTarget(doc); err != nil {
			return err
		}

	case directionToSource:
		node, err := richtext.ParseTarget(data)
		if err != nil {
			return err
		}
		if dump {
			spew.Fdump(os.Stderr, node)
		}
		doc, err := conv.ToSource(node)
		if err != nil {
			return err
		}
		if policyPath != "" {
			cfg, err := policy.LoadFile(policyPath)
			if err != nil {
				return err
			}
			p := policy.Parse(cfg)
			doc = p.Sanitize(doc)
			if verbose {
				okColor.Fprintf(os.Stderr, "policy %s disables %v\n", p.Fingerprint(), p.DisabledFeatures)
			}
		}
		if stats {
			printStats(doc)
		}
		result = doc

	default:
		return fmt.Errorf("unknown direction %q", direction)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func readInput(in string) ([]byte, error) {
	if in == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(in)
}

func printStats(doc *richtext.SourceNode) {
	s := richtext.Analyze(doc)
	okColor.Fprintf(os.Stderr, "words=%d characters=%d blocks=%d entries=%d assets=%d inline=%d\n",
		s.Words, s.Characters, s.Blocks, len(s.Embedded.Entries), len(s.Embedded.Assets), len(s.Embedded.InlineEntries))
}
