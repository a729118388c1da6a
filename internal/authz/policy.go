package authz

import (
	"fmt"
	"strings"
)

// TerminalLock задаёт, что можно делать с заявкой в статусе repaired или scrap.
type TerminalLock string

const (
	// TerminalLockNone - финальные заявки правятся как обычные (исходное поведение).
	TerminalLockNone TerminalLock = "none"
	// TerminalLockStatus - статус финальной заявки не меняется, прочие поля - да.
	TerminalLockStatus TerminalLock = "status"
	// TerminalLockAll - финальная заявка только для чтения.
	TerminalLockAll TerminalLock = "all"
)

func ParseTerminalLock(s string) (TerminalLock, error) {
	switch TerminalLock(strings.ToLower(strings.TrimSpace(s))) {
	case TerminalLockNone:
		return TerminalLockNone, nil
	case TerminalLockStatus, "":
		return TerminalLockStatus, nil
	case TerminalLockAll:
		return TerminalLockAll, nil
	}
	return "", fmt.Errorf("неизвестная политика финальных статусов: %q", s)
}

// LifecyclePolicy - настраиваемые правила жизненного цикла заявки.
type LifecyclePolicy struct {
	// AllowRepick разрешает технику забрать заявку, уже назначенную другому.
	AllowRepick  bool
	TerminalLock TerminalLock
}

func DefaultLifecyclePolicy() LifecyclePolicy {
	return LifecyclePolicy{AllowRepick: false, TerminalLock: TerminalLockStatus}
}
