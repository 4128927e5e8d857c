package deps

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// ProbeVersion runs "<command> -version" and extracts the version token from
// the first output line, e.g. "6.1.1" from "ffmpeg version 6.1.1 Copyright".
func ProbeVersion(ctx context.Context, command string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, command, "-version").Output()
	if err != nil {
		return "", err
	}
	return parseVersion(out), nil
}

func parseVersion(out []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	if !scanner.Scan() {
		return ""
	}
	fields := strings.Fields(scanner.Text())
	for i, field := range fields {
		if field == "version" && i+1 < len(fields) {
			return fields[i+1]
		}
	}
	return ""
}
