// Package migration implements spec.md §4.7: moving a user's running
// Application from one transport to the other when the same user id
// authenticates a second time over a different channel.
package migration

import "github.com/txwerewolves/wwserver/internal/avatar"

// ProduceCompatibleApplication returns an Application of targetKind bound
// to the same user/session/game state as current, per spec.md §4.7:
//
//  1. if current already provides targetKind, it is returned unchanged
//     (reattach);
//  2. otherwise a peer application is constructed, the lobby machine's
//     token is transferred, and a synthetic next-phase signal refreshes
//     the new UI.
//
// The caller is responsible for installing the result as the user's
// application and for replacing the old avatar — this function only
// decides which Application instance the new connection should drive.
func ProduceCompatibleApplication(current avatar.Application, targetKind avatar.Kind) (avatar.Application, error) {
	if current.Kind() == targetKind {
		return current, nil
	}
	next, err := current.ProduceCompatible(targetKind)
	if err != nil {
		return nil, err
	}
	if next != current {
		next.RefreshUI()
	}
	return next, nil
}
