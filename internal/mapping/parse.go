package mapping

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/sweeney/gpio2uinput/internal/action"
)

// Parse reads the line-oriented mapping format:
//
//	# comment
//	15 HAT_UP
//	21:BTN_SOUTH
//	D4 KEY_ENTER
//
// Each line is a target and a token separated by whitespace or a colon.
// Lines that cannot be parsed, unknown targets and unknown tokens are
// logged and skipped. Only read errors are returned.
func Parse(r io.Reader, logger *slog.Logger) (*Table, error) {
	t := NewTable()
	sc := bufio.NewScanner(r)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(strings.ReplaceAll(line, ":", " "))
		if len(fields) < 2 {
			logger.Warn("bad map line", "line", ln, "text", line)
			continue
		}

		// A target written as I2C:D5 was split by the colon replacement.
		target, token := fields[0], fields[1]
		if strings.EqualFold(target, "I2C") && len(fields) >= 3 {
			target, token = "I2C:"+fields[1], fields[2]
		}

		ch, err := action.ParseTarget(target)
		if err != nil {
			logger.Warn("unknown map target", "line", ln, "target", target)
			continue
		}
		a, err := action.Resolve(token)
		if err != nil {
			logger.Warn("unknown map token", "line", ln, "token", token)
			continue
		}
		t.Set(ch, a)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read mapping: %w", err)
	}
	return t, nil
}

// tomlFile is the TOML form of a mapping file:
//
//	[gpio]
//	15 = "HAT_UP"
//
//	[bus]
//	D2 = "KEY_A"
type tomlFile struct {
	GPIO map[string]string `toml:"gpio"`
	Bus  map[string]string `toml:"bus"`
}

// LoadFile loads a mapping file. Files ending in .toml use the TOML form,
// anything else the line format. A missing or unreadable file is an error.
func LoadFile(path string, logger *slog.Logger) (*Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return loadTOML(path, logger)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mapping: %w", err)
	}
	defer f.Close()
	return Parse(f, logger)
}

func loadTOML(path string, logger *slog.Logger) (*Table, error) {
	var doc tomlFile
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, fmt.Errorf("decode mapping %s: %w", path, err)
	}

	t := NewTable()
	add := func(section, key, token string, want action.Source) {
		target := key
		if want == action.Bus && !strings.HasPrefix(strings.ToUpper(key), "D") && !strings.Contains(key, ":") {
			target = "D" + key
		}
		ch, err := action.ParseTarget(target)
		if err != nil || ch.Source != want {
			logger.Warn("unknown map target", "section", section, "target", key)
			return
		}
		a, err := action.Resolve(token)
		if err != nil {
			logger.Warn("unknown map token", "section", section, "target", key, "token", token)
			return
		}
		t.Set(ch, a)
	}

	for _, k := range sortedNames(doc.GPIO) {
		add("gpio", k, doc.GPIO[k], action.Edge)
	}
	for _, k := range sortedNames(doc.Bus) {
		add("bus", k, doc.Bus[k], action.Bus)
	}
	return t, nil
}

func sortedNames(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
