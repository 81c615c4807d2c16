// Package config loads a project's .scopemux.kdl file into a
// project.Configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/scopemux/scopemux/internal/project"
)

// LoadKDL loads configuration from <projectRoot>/.scopemux.kdl. A missing
// file is not an error: the caller gets project.Configuration's zero value,
// which spec.md §3 defines to behave exactly like an unset Configuration.
func LoadKDL(projectRoot string) (project.Configuration, error) {
	kdlPath := filepath.Join(projectRoot, ".scopemux.kdl")

	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return project.Configuration{}, nil
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return project.Configuration{}, fmt.Errorf("failed to read .scopemux.kdl: %w", err)
	}

	return parseKDL(string(content))
}

func parseKDL(content string) (project.Configuration, error) {
	cfg := project.Configuration{}

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return cfg, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "parse":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "headers":
					if b, ok := firstBoolArg(cn); ok {
						cfg.ParseHeaders = b
					}
				case "follow_includes":
					if b, ok := firstBoolArg(cn); ok {
						cfg.FollowIncludes = b
					}
				case "resolve_external_symbols":
					if b, ok := firstBoolArg(cn); ok {
						cfg.ResolveExternalSymbols = b
					}
				case "max_include_depth":
					if v, ok := firstIntArg(cn); ok && v >= 0 {
						cfg.MaxIncludeDepth = uint(v)
					}
				}
			}
		case "limits":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_files":
					if v, ok := firstIntArg(cn); ok && v >= 0 {
						cfg.MaxFiles = uint(v)
					}
				}
			}
		case "log_level":
			if s, ok := firstStringArg(n); ok {
				cfg.LogLevel = s
			}
		case "extensions":
			cfg.ExtensionFilter = append(cfg.ExtensionFilter, collectStringArgs(n)...)
		case "system_include_roots":
			cfg.SystemIncludeRoots = append(cfg.SystemIncludeRoots, collectStringArgs(n)...)
		case "suggest_on_not_found":
			if b, ok := firstBoolArg(n); ok {
				cfg.SuggestOnNotFound = b
			}
		case "exclude":
			cfg.ExcludeGlobs = append(cfg.ExcludeGlobs, collectStringArgs(n)...)
		case "respect_gitignore":
			if b, ok := firstBoolArg(n); ok {
				cfg.RespectGitignore = b
			}
		case "auto_exclude_build_artifacts":
			if b, ok := firstBoolArg(n); ok {
				cfg.AutoExcludeBuildArtifacts = b
			}
		case "watch":
			for _, cn := range n.Children {
				if nodeName(cn) == "debounce_ms" {
					if v, ok := firstIntArg(cn); ok && v >= 0 {
						cfg.WatchDebounce = time.Duration(v) * time.Millisecond
					}
				}
			}
		}
	}

	return cfg, nil
}

// Helper functions leveraging kdl-go's document model, following the
// node-walking idiom the teacher's propagation config loader used.
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

// parseSize handles size strings like "10MB", "500KB", "1GB", kept for
// .scopemux.kdl sections that size-bound rather than count-bound (none yet
// defined, but AddDirectory's ExtensionFilter sizing may want it later).
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		multiplier = 1
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return 0, err
	}
	return num * multiplier, nil
}
