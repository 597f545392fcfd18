package main

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

const externalBinaryName = "sing-box"

// singBoxToolchain abstracts the PATH lookup and the package-manager install
// so descriptor assembly can be exercised without touching the host system.
type singBoxToolchain interface {
	locate() (string, error)
	install(ctx context.Context) error
}

// systemToolchain is the production implementation: PATH lookup and Homebrew.
type systemToolchain struct{}

func (systemToolchain) locate() (string, error) {
	return exec.LookPath(externalBinaryName)
}

func (systemToolchain) install(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "brew", "install", externalBinaryName)
	out, err := cmd.CombinedOutput()
	if err != nil {
		logrus.Debugf("[External] brew install output: %s", strings.TrimSpace(string(out)))
		return err
	}
	return nil
}

// resolveExternalExec returns the absolute sing-box path, installing the
// binary when the first lookup misses. Progress lines go to out like the
// rest of the pipeline.
func resolveExternalExec(ctx context.Context, tools singBoxToolchain, out io.Writer) (string, error) {
	if path, err := tools.locate(); err == nil {
		logrus.Debugf("[External] sing-box at %s", path)
		return path, nil
	}
	fmt.Fprintln(out, "✖ sing-box not found, try install...")
	if err := tools.install(ctx); err != nil {
		return "", &installError{err: err}
	}
	fmt.Fprintln(out, "✅ Successfully installed sing-box")
	path, err := tools.locate()
	if err != nil {
		return "", errExecutableNotFound
	}
	logrus.Debugf("[External] sing-box at %s", path)
	return path, nil
}

// buildExternalProxyLine renders the Surge external proxy descriptor. The
// field order is fixed; exec and args values are quoted, local-port and
// address stay bare.
func buildExternalProxyLine(execPath, configPath string, controller externalController) string {
	var sb strings.Builder
	sb.WriteString("External = external, ")
	sb.WriteString(`exec = "` + execPath + `", `)
	sb.WriteString("local-port = " + controller.port + ", ")
	sb.WriteString(`args = "run", `)
	sb.WriteString(`args = "-c", `)
	sb.WriteString(`args = "` + configPath + `", `)
	sb.WriteString("address = " + controller.address)
	return sb.String()
}
