package syncer

import (
	"github.com/sshsync/sshsync/internal/utils"
)

// Direction of one synchronization phase.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Phase returns the user-facing name of the direction.
func (d Direction) Phase() string {
	if d == DirectionUp {
		return "Upload"
	}
	return "Download"
}

// Task is one element transfer between the local host and a target host.
type Task struct {
	Element    string
	Direction  Direction
	TargetHost string
	Src        string
	Dest       string
	Command    string
}

// buildTask resolves the endpoints of one shared element. The local path
// is the element path relative to the home directory; the remote path is
// prefixed with the target's _PATH override when one is configured, else
// with the SSH form `host:./`.
func (e *Engine) buildTask(target, element string, direction Direction) (*Task, error) {
	localRel, err := e.cfg.ElementPath(e.hosts.Local, element)
	if err != nil {
		return nil, err
	}
	localPath, err := utils.ExpandUser("~/" + localRel)
	if err != nil {
		return nil, err
	}

	base := target + ":./"
	if override, ok := e.cfg.PathOverride(target); ok {
		// A _PATH override may point at a locally mounted tree.
		base, err = utils.ExpandUser(override)
		if err != nil {
			return nil, err
		}
	}
	targetRel, err := e.cfg.ElementPath(target, element)
	if err != nil {
		return nil, err
	}
	targetPath := base + targetRel

	src, dest := localPath, targetPath
	if direction == DirectionDown {
		src, dest = targetPath, localPath
	}

	return &Task{
		Element:    element,
		Direction:  direction,
		TargetHost: target,
		Src:        src,
		Dest:       dest,
		Command:    e.builder.Command(src, dest),
	}, nil
}
