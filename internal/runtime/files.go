package runtime

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/aretw0/loopbuild/pkg/domain"
)

func parentStem(seg *domain.Segment) string {
	base := filepath.Base(seg.ParentStructureFile)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// TrialPath is the working file of a trimmed trial candidate.
func TrialPath(workDir string, seg *domain.Segment, trialID string) string {
	name := parentStem(seg) + "_" + seg.Identifier + "_" + trialID + domain.TrialSuffix + domain.StructureExt
	return filepath.Join(workDir, name)
}

// AcceptedPath is the output file of the index-th accepted model of a segment.
func AcceptedPath(outputDir string, seg *domain.Segment, index int) string {
	name := parentStem(seg) + "_" + seg.Identifier + "_" + strconv.Itoa(index) + domain.StructureExt
	return filepath.Join(outputDir, name)
}

// ConsolidatedPath is the merged multi-model file of a segment.
func ConsolidatedPath(outputDir string, seg *domain.Segment) string {
	return filepath.Join(outputDir, parentStem(seg)+"_"+seg.Identifier+domain.StructureExt)
}

// moveFile renames src to dst, copying across filesystems when a rename is not possible.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("failed to move %s to %s: %w", src, dst, err)
	}

	if err := copyFile(src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("failed to remove %s after copy: %w", src, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("failed to fsync %s: %w", dst, err)
	}
	return out.Close()
}
