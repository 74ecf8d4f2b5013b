package main

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	mermaidASCIIVersion = "1.1.0"
	mermaidASCIIBin     = "mermaid-ascii"
	mermaidASCIIRelease = "https://github.com/AlexanderGrooff/mermaid-ascii/releases/download"
)

// SHA-256 checksums for mermaid-ascii v1.1.0 release assets.
var mermaidASCIIChecksums = map[string]string{
	"mermaid-ascii_Darwin_arm64.tar.gz":  "068d2ff869d4921655cab471500fffd8c3ed28155b100518ed3cf3835d53d3d0",
	"mermaid-ascii_Darwin_x86_64.tar.gz": "0cd4c9c01a03284fe866f39a1ce1aaee1e6a2fbd91deedc4ec254cb87622eec8",
	"mermaid-ascii_Linux_arm64.tar.gz":   "3b7d0a95141bfbca838e445ea802ffb7fba8873b3c4af498482c84f83526f2db",
	"mermaid-ascii_Linux_x86_64.tar.gz":  "838ea93d561b3bc83aa15531c6ed7d2d261a8edc521d5484f7e91fe831cc4c65",
}

// httpDoer is satisfied by *http.Client.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// toolInstaller downloads and verifies release binaries used by the diagram renderers.
type toolInstaller struct {
	client    httpDoer
	baseURL   string
	checksums map[string]string
	goos      string
	goarch    string
}

func newToolInstaller() *toolInstaller {
	return &toolInstaller{
		client:    &http.Client{Timeout: 60 * time.Second},
		baseURL:   mermaidASCIIRelease,
		checksums: mermaidASCIIChecksums,
		goos:      runtime.GOOS,
		goarch:    runtime.GOARCH,
	}
}

func (a *app) runInstallTools(ctx context.Context, args []string) int {
	fs := a.flags("install-tools")
	binDir := fs.String("bin-dir", a.cfg.BinDir, "directory to install binaries into")
	force := fs.Bool("force", false, "reinstall even if already present")
	checksumFile := fs.String("checksums", "", "release checksums file to verify against instead of the built-in list")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 0 {
		return a.usage("install-tools [-bin-dir dir] [-force] [-checksums file]")
	}

	inst := newToolInstaller()
	if *checksumFile != "" {
		f, err := os.Open(*checksumFile)
		if err != nil {
			return a.fail(err)
		}
		sums, err := parseChecksumFile(f)
		f.Close()
		if err != nil {
			return a.fail(err)
		}
		inst.checksums = sums
	}

	path, installed, err := inst.installMermaidASCII(ctx, *binDir, *force)
	if err != nil {
		fmt.Fprintln(a.stderr, warnStyle.Render("ASCII diagrams will use the built-in renderer"))
		return a.fail(err)
	}
	if !installed {
		fmt.Fprintf(a.stdout, "%s already installed at %s\n", mermaidASCIIBin, path)
		return 0
	}
	fmt.Fprintf(a.stdout, "%s %s installed to %s\n", mermaidASCIIBin, mermaidASCIIVersion, path)
	return 0
}

// installMermaidASCII places the mermaid-ascii binary in binDir. It reports
// false when the binary was already there and force is not set. Archives
// without a known checksum are refused.
func (ti *toolInstaller) installMermaidASCII(ctx context.Context, binDir string, force bool) (string, bool, error) {
	dest := filepath.Join(binDir, mermaidASCIIBin)
	if !force {
		if _, err := os.Stat(dest); err == nil {
			return dest, false, nil
		}
	}

	asset, err := mermaidASCIIAssetName(ti.goos, ti.goarch)
	if err != nil {
		return "", false, err
	}
	expected, ok := ti.checksums[asset]
	if !ok {
		return "", false, fmt.Errorf("no known checksum for %s", asset)
	}

	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return "", false, fmt.Errorf("create %s: %w", binDir, err)
	}

	url := fmt.Sprintf("%s/%s/%s", ti.baseURL, mermaidASCIIVersion, asset)
	tmp, err := downloadToTempFile(ctx, ti.client, url, binDir)
	if err != nil {
		return "", false, fmt.Errorf("download %s: %w", asset, err)
	}
	defer os.Remove(tmp)

	actual, err := sha256File(tmp)
	if err != nil {
		return "", false, err
	}
	if actual != expected {
		return "", false, fmt.Errorf("checksum mismatch for %s: expected %s, got %s", asset, expected, actual)
	}

	f, err := os.Open(tmp)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	if err := extractTarGz(f, binDir, mermaidASCIIBin); err != nil {
		_ = os.Remove(dest)
		return "", false, err
	}
	if err := os.Chmod(dest, 0o755); err != nil {
		return "", false, err
	}
	return dest, true, nil
}

// mermaidASCIIAssetName returns the release asset name for a platform.
func mermaidASCIIAssetName(goos, goarch string) (string, error) {
	var osName string
	switch goos {
	case "darwin":
		osName = "Darwin"
	case "linux":
		osName = "Linux"
	default:
		return "", fmt.Errorf("mermaid-ascii: unsupported OS %q", goos)
	}

	var archName string
	switch goarch {
	case "amd64":
		archName = "x86_64"
	case "arm64":
		archName = "arm64"
	case "386":
		archName = "i386"
	default:
		return "", fmt.Errorf("mermaid-ascii: unsupported architecture %q", goarch)
	}

	return fmt.Sprintf("mermaid-ascii_%s_%s.tar.gz", osName, archName), nil
}

// downloadToTempFile fetches url into a temporary file in dir and returns its
// path. The caller removes it.
func downloadToTempFile(ctx context.Context, client httpDoer, url, dir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download returned %d", resp.StatusCode)
	}

	f, err := os.CreateTemp(dir, "download-*")
	if err != nil {
		return "", err
	}
	path := f.Name()

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// extractTarGz writes the regular file named targetName, matched by base name,
// from a tar.gz stream into destDir.
func extractTarGz(r io.Reader, destDir, targetName string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("gzip: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("file %q not found in archive", targetName)
		}
		if err != nil {
			return fmt.Errorf("tar: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg || filepath.Base(hdr.Name) != targetName {
			continue
		}

		destPath := filepath.Join(destDir, targetName)
		f, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
		if err != nil {
			return fmt.Errorf("create %s: %w", destPath, err)
		}
		if _, err := io.Copy(f, tr); err != nil { //nolint:gosec // bounded by tar header size
			f.Close()
			return fmt.Errorf("write %s: %w", destPath, err)
		}
		return f.Close()
	}
}

// sha256File computes the SHA-256 hex digest of a file.
func sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// parseChecksumFile reads "<sha256>  <filename>" lines as written by
// shasum -a 256. Malformed lines are skipped.
func parseChecksumFile(r io.Reader) (map[string]string, error) {
	sums := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 || len(parts[0]) != sha256.Size*2 {
			continue
		}
		sums[strings.TrimPrefix(parts[len(parts)-1], "*")] = strings.ToLower(parts[0])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading checksums: %w", err)
	}
	return sums, nil
}
