package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/speckit-paths/internal/execshell"
	"github.com/temirov/speckit-paths/internal/filesystem"
	"github.com/temirov/speckit-paths/internal/gitrepo"
)

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing filesystem.FileSystem) filesystem.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default.
func ResolveGitExecutor(existing gitrepo.GitExecutor, logger *zap.Logger) (gitrepo.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveRepositoryInspector builds a git-backed repository inspector on top of the executor.
func ResolveRepositoryInspector(executor gitrepo.GitExecutor) (*gitrepo.RepositoryInspector, error) {
	return gitrepo.NewRepositoryInspector(executor)
}
