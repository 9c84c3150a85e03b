// Command openapi-compat fails when a revision of the API document drops
// paths, operations or response codes, or adds required parameters, that
// an older revision offered.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"devconnector/docs"

	"gopkg.in/yaml.v3"
)

var methods = []string{"get", "put", "post", "delete", "patch", "head", "options"}

type parameter struct {
	Name     string `yaml:"name"`
	In       string `yaml:"in"`
	Required bool   `yaml:"required"`
}

type operation struct {
	Parameters []parameter    `yaml:"parameters"`
	Responses  map[string]any `yaml:"responses"`
}

type document struct {
	Paths map[string]map[string]yaml.Node `yaml:"paths"`
}

// spec is the comparable subset of a document: path -> method -> operation.
type spec map[string]map[string]operation

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("openapi-compat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	basePath := fs.String("base", "", "base swagger.yaml path")
	revisionPath := fs.String("revision", "", "revision swagger.yaml path (default: the embedded document)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if strings.TrimSpace(*basePath) == "" {
		fmt.Fprintln(stderr, "usage: openapi-compat -base <path> [-revision <path>]")
		return 2
	}

	base, err := loadFile(*basePath)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load base document: %v\n", err)
		return 1
	}

	var revision spec
	if *revisionPath == "" {
		revision, err = parse(docs.YAML())
	} else {
		revision, err = loadFile(*revisionPath)
	}
	if err != nil {
		fmt.Fprintf(stderr, "failed to load revision document: %v\n", err)
		return 1
	}

	if issues := compare(base, revision); len(issues) > 0 {
		fmt.Fprintln(stderr, "backward compatibility check failed:")
		for _, issue := range issues {
			fmt.Fprintf(stderr, "- %s\n", issue)
		}
		return 1
	}

	fmt.Fprintln(stdout, "openapi compatibility check passed")
	return 0
}

func loadFile(path string) (spec, error) {
	// #nosec G304: path comes from CLI flags in a dev tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(raw)
}

func parse(raw []byte) (spec, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc.Paths == nil {
		return nil, errors.New("missing top-level paths field")
	}

	out := make(spec, len(doc.Paths))
	for path, entries := range doc.Paths {
		ops := make(map[string]operation)
		for key, node := range entries {
			method := strings.ToLower(strings.TrimSpace(key))
			if !isMethod(method) {
				continue
			}
			var op operation
			if err := node.Decode(&op); err != nil {
				return nil, fmt.Errorf("%s %s: %w", strings.ToUpper(method), path, err)
			}
			ops[method] = op
		}
		if len(ops) > 0 {
			out[path] = ops
		}
	}
	return out, nil
}

func isMethod(m string) bool {
	for _, known := range methods {
		if m == known {
			return true
		}
	}
	return false
}

func compare(base, revision spec) []string {
	var issues []string

	for path, baseOps := range base {
		revOps, ok := revision[path]
		if !ok {
			issues = append(issues, fmt.Sprintf("removed path: %s", path))
			continue
		}

		for method, baseOp := range baseOps {
			revOp, ok := revOps[method]
			if !ok {
				issues = append(issues, fmt.Sprintf("removed operation: %s %s", strings.ToUpper(method), path))
				continue
			}
			label := strings.ToUpper(method) + " " + path

			for code := range baseOp.Responses {
				if _, ok := revOp.Responses[code]; !ok {
					issues = append(issues, fmt.Sprintf("removed response code: %s -> %s", label, strings.ToUpper(code)))
				}
			}

			known := make(map[string]bool, len(baseOp.Parameters))
			for _, p := range baseOp.Parameters {
				known[p.In+":"+p.Name] = p.Required
			}
			for _, p := range revOp.Parameters {
				if !p.Required {
					continue
				}
				if wasRequired, existed := known[p.In+":"+p.Name]; !existed || !wasRequired {
					issues = append(issues, fmt.Sprintf("new required parameter: %s -> %s %s", label, p.In, p.Name))
				}
			}
		}
	}

	sort.Strings(issues)
	return issues
}
