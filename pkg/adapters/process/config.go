package process

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
)

// Command describes how to start the tool server.
// An empty Path means the running executable.
type Command struct {
	Path string            `yaml:"path" json:"path" mapstructure:"path"`
	Args []string          `yaml:"args" json:"args" mapstructure:"args"`
	Env  map[string]string `yaml:"env" json:"env" mapstructure:"env"`
	Dir  string            `yaml:"dir" json:"dir" mapstructure:"dir"`
}

// ServeCommand runs "<executable> serve --addr addr".
func ServeCommand(addr string) Command {
	return Command{Args: []string{"serve", "--addr", addr}}
}

func (c Command) build() (*exec.Cmd, error) {
	path := c.Path
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("resolve executable: %w", err)
		}
		path = exe
	}

	cmd := exec.Command(path, c.Args...)
	cmd.Dir = c.Dir

	keys := make([]string, 0, len(c.Env))
	for k := range c.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := cmd.Environ()
	for _, k := range keys {
		env = append(env, k+"="+c.Env[k])
	}
	cmd.Env = env
	return cmd, nil
}
