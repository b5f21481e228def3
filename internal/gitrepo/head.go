package gitrepo

import (
	"bufio"
	"bytes"
	"path/filepath"
	"strings"
)

const (
	// MetadataDirectoryName is the name of the git metadata entry at a working tree root.
	MetadataDirectoryName = ".git"
	// HeadFileName is the name of the file recording the checked out reference.
	HeadFileName = "HEAD"

	headBranchReferencePrefixConstant = "ref: refs/heads/"
	gitDirectoryPointerPrefixConstant = "gitdir:"
)

// ParseHeadReference extracts the branch name from HEAD file content. It
// returns false when HEAD holds a bare commit hash or no branch reference.
func ParseHeadReference(content []byte) (string, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, headBranchReferencePrefixConstant) {
			continue
		}
		branchName := strings.TrimSpace(strings.TrimPrefix(line, headBranchReferencePrefixConstant))
		if len(branchName) == 0 {
			continue
		}
		return branchName, true
	}
	return "", false
}

// ParseGitDirectoryPointer reads the "gitdir: <path>" line found in the .git
// file of linked worktrees and submodules. Relative targets are resolved
// against pointerDirectory.
func ParseGitDirectoryPointer(content []byte, pointerDirectory string) (string, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, gitDirectoryPointerPrefixConstant) {
			continue
		}
		target := filepath.FromSlash(strings.TrimSpace(strings.TrimPrefix(line, gitDirectoryPointerPrefixConstant)))
		if len(target) == 0 {
			return "", false
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(pointerDirectory, target)
		}
		return filepath.Clean(target), true
	}
	return "", false
}
