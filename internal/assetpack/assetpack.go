/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package assetpack

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "gopicturebook/internal/log"
)

// ExportBookAssets zips the book's assets directory (<book>/assets) into a
// single .zip file so illustrations can be shared between books. The archive
// preserves the directory structure and adds a small manifest file at the
// root named assetpack.manifest.txt for quick human inspection.
// If the assets directory does not exist or is empty, the archive is still
// created with only the manifest.
func ExportBookAssets(bookRoot string, destZipPath string) error {
	l := applog.WithOperation(applog.WithComponent("assetpack"), "export").With(slog.String("book", bookRoot))
	if strings.TrimSpace(bookRoot) == "" {
		return errors.New("bookRoot is required")
	}
	if strings.TrimSpace(destZipPath) == "" {
		return errors.New("destZipPath is required")
	}
	assetsDir := filepath.Join(bookRoot, "assets")
	if _, err := os.Stat(assetsDir); os.IsNotExist(err) {
		if err := os.MkdirAll(assetsDir, 0o755); err != nil {
			return fmt.Errorf("ensure assets dir: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return fmt.Errorf("ensure zip dir: %w", err)
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)
	defer func() { _ = zw.Close() }()

	manifest := fmt.Sprintf("Picture Book Asset Pack\nCreated: %s\nBook: %s\n\nContents mirror the book's /assets directory.\n",
		time.Now().Format(time.RFC3339), bookRoot)
	w, err := zw.Create("assetpack.manifest.txt")
	if err != nil {
		return fmt.Errorf("add manifest: %w", err)
	}
	if _, err := w.Write([]byte(manifest)); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	added := 0
	err = filepath.Walk(assetsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(bookRoot, path)
		if err != nil {
			return err
		}
		// Forward slashes inside the zip regardless of platform
		zipName := filepath.ToSlash(rel)
		fw, err := zw.Create(zipName)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		if _, err := io.Copy(fw, f); err != nil {
			return err
		}
		added++
		return nil
	})
	if err != nil {
		l.Error("zip build failed", slog.Any("err", err))
		return fmt.Errorf("build zip: %w", err)
	}
	l.Info("asset pack exported", slog.Int("files", added), slog.String("zip", destZipPath))
	return nil
}

// InstallPack extracts the given .zip pack into the book's assets directory.
// Existing files are not overwritten; if a file already exists, it is skipped.
// Entries escaping the book root are rejected. Returns the count of files
// installed (skipped files are not counted).
func InstallPack(bookRoot string, packZipPath string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("assetpack"), "install").With(slog.String("book", bookRoot))
	if strings.TrimSpace(bookRoot) == "" {
		return 0, errors.New("bookRoot is required")
	}
	if strings.TrimSpace(packZipPath) == "" {
		return 0, errors.New("packZipPath is required")
	}
	assetsDir := filepath.Join(bookRoot, "assets")
	if err := os.MkdirAll(assetsDir, 0o755); err != nil {
		return 0, fmt.Errorf("ensure assets dir: %w", err)
	}

	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return 0, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	installed := 0
	for _, f := range r.File {
		name := f.Name
		if name == "assetpack.manifest.txt" {
			continue
		}
		if strings.Contains(name, "..") {
			l.Warn("skip entry escaping book root", slog.String("name", name))
			continue
		}
		// Entries already rooted at assets/ keep their place; anything else
		// is placed under assets/.
		targetRel := name
		if !strings.HasPrefix(targetRel, "assets/") {
			targetRel = filepath.ToSlash(filepath.Join("assets", targetRel))
		}
		targetPath := filepath.Join(bookRoot, filepath.FromSlash(targetRel))
		if !strings.HasPrefix(targetPath, filepath.Clean(bookRoot)+string(os.PathSeparator)) {
			l.Warn("skip entry escaping book root", slog.String("name", name))
			continue
		}
		if _, err := os.Stat(targetPath); err == nil {
			l.Warn("skip existing file", slog.String("path", targetPath))
			continue
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(targetPath, 0o755); err != nil {
				return installed, err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return installed, err
		}
		rc, err := f.Open()
		if err != nil {
			return installed, err
		}
		out, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			_ = rc.Close()
			return installed, err
		}
		if _, err := io.Copy(out, rc); err != nil {
			_ = out.Close()
			_ = rc.Close()
			return installed, err
		}
		_ = out.Close()
		_ = rc.Close()
		installed++
	}
	l.Info("asset pack installed", slog.Int("files", installed))
	return installed, nil
}
