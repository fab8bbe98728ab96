// Package hook registers webui-embed as a PlatformIO pre-build action.
package hook

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nikicat/webui-embed/internal/fileutil"
)

// ScriptPath is where the hook script lives, relative to the project.
const ScriptPath = "scripts/webui_embed_hook.py"

const iniFile = "platformio.ini"

const scriptTemplate = `# Generated by webui-embed. Do not edit.
Import("env")
import subprocess


def webui_embed(source, target, env):
    subprocess.call([%q, "build", "--hook", "--project", env.subst("$PROJECT_DIR")])


env.AddPreAction("buildprog", webui_embed)
`

// Options configures hook installation.
type Options struct {
	ProjectDir string
	// Binary is the webui-embed executable the hook calls. Defaults to the
	// running executable.
	Binary string
	Out    io.Writer
}

// Status describes the hook in a project.
type Status struct {
	Script string `json:"script"`
	// Installed is set when the hook script exists.
	Installed bool `json:"installed"`
	// Registered is set when platformio.ini lists the script in extra_scripts.
	Registered bool `json:"registered"`
}

// executableFunc locates the running binary. Replaced in tests.
var executableFunc = os.Executable

func (o Options) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

// Install writes the hook script and tells the user how to register it
// when platformio.ini does not reference it yet.
func Install(opts Options) (Status, error) {
	bin := opts.Binary
	if bin == "" {
		self, err := executableFunc()
		if err != nil {
			return Status{}, fmt.Errorf("find executable: %w", err)
		}
		self, err = filepath.EvalSymlinks(self)
		if err != nil {
			return Status{}, fmt.Errorf("resolve executable: %w", err)
		}
		bin = self
	}

	script := filepath.Join(opts.ProjectDir, filepath.FromSlash(ScriptPath))
	if err := fileutil.WriteAtomic(script, []byte(fmt.Sprintf(scriptTemplate, bin)), 0o644); err != nil {
		return Status{}, fmt.Errorf("write hook script: %w", err)
	}
	fmt.Fprintf(opts.out(), "Wrote hook script: %s\n", script)

	st, err := Check(opts.ProjectDir)
	if err != nil {
		return st, err
	}
	if !st.Registered {
		fmt.Fprintf(opts.out(), "Add this to the [env] section of %s:\n  extra_scripts = pre:%s\n", iniFile, ScriptPath)
	}
	return st, nil
}

// Uninstall removes the hook script.
func Uninstall(opts Options) error {
	script := filepath.Join(opts.ProjectDir, filepath.FromSlash(ScriptPath))
	if err := os.Remove(script); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove hook script: %w", err)
	}
	fmt.Fprintf(opts.out(), "Removed %s\n", script)

	st, err := Check(opts.ProjectDir)
	if err != nil {
		return err
	}
	if st.Registered {
		fmt.Fprintf(opts.out(), "%s still lists %s in extra_scripts\n", iniFile, ScriptPath)
	}
	return nil
}

// Check reports whether the hook is installed and registered.
func Check(projectDir string) (Status, error) {
	st := Status{Script: filepath.Join(projectDir, filepath.FromSlash(ScriptPath))}
	if _, err := os.Stat(st.Script); err == nil {
		st.Installed = true
	}

	data, err := os.ReadFile(filepath.Join(projectDir, iniFile))
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return st, fmt.Errorf("read %s: %w", iniFile, err)
	}
	st.Registered = registered(string(data))
	return st, nil
}

// registered looks for the script in an extra_scripts value, including
// indented continuation lines.
func registered(ini string) bool {
	inExtra := false
	for _, line := range strings.Split(ini, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, ";") || strings.HasPrefix(trimmed, "#") {
			continue
		}
		continuation := line[0] == ' ' || line[0] == '\t'
		if !continuation {
			key, value, ok := strings.Cut(trimmed, "=")
			inExtra = ok && strings.TrimSpace(key) == "extra_scripts"
			if !inExtra {
				continue
			}
			trimmed = value
		} else if !inExtra {
			continue
		}
		for _, f := range strings.FieldsFunc(trimmed, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' }) {
			if strings.TrimPrefix(f, "pre:") == ScriptPath {
				return true
			}
		}
	}
	return false
}
