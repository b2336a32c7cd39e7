package elevator

import (
	"sort"

	"github.com/samber/lo"
)

// SortTargetFloors orders targets with the LOOK algorithm.
// 1. 진행 방향 앞쪽(현재 층 포함)의 층을 진행 방향 순서로 먼저 처리합니다.
// 2. 뒤쪽 층은 복귀 스윕을 위해 반대 방향 순서로 이어 붙입니다.
// An idle car simply takes the nearest floors first.
func SortTargetFloors(current int, dir Direction, targets []int) []int {
	uniq := lo.Uniq(targets)

	if dir != DirUp && dir != DirDown {
		sort.SliceStable(uniq, func(i, j int) bool {
			return abs(uniq[i]-current) < abs(uniq[j]-current)
		})
		return uniq
	}

	ahead := lo.Filter(uniq, func(f int, _ int) bool {
		if dir == DirUp {
			return f >= current
		}
		return f <= current
	})
	behind := lo.Filter(uniq, func(f int, _ int) bool {
		if dir == DirUp {
			return f < current
		}
		return f > current
	})

	if dir == DirUp {
		sort.Ints(ahead)
		sort.Sort(sort.Reverse(sort.IntSlice(behind)))
	} else {
		sort.Sort(sort.Reverse(sort.IntSlice(ahead)))
		sort.Ints(behind)
	}
	return append(ahead, behind...)
}

// DeriveDirection picks the movement direction for LOOK-sorted targets.
// Standing on the head target keeps the current heading only while another
// target remains further along it.
func DeriveDirection(current int, dir Direction, sorted []int) Direction {
	if len(sorted) == 0 {
		return DirIdle
	}
	head := sorted[0]
	switch {
	case head > current:
		return DirUp
	case head < current:
		return DirDown
	}
	if dir == DirUp || dir == DirDown {
		for _, f := range sorted[1:] {
			if dir == DirUp && f > current {
				return DirUp
			}
			if dir == DirDown && f < current {
				return DirDown
			}
		}
	}
	return DirIdle
}

// floorsPerTick decides how far a car may travel this tick toward a head
// target dist floors away.
func floorsPerTick(mode OperationMode, dist int, rng Source) int {
	switch mode {
	case ModePower:
		if dist > 1 {
			return 2
		}
		return 1
	case ModeEco:
		if coinFlip(rng) {
			return 1
		}
		return 0
	}
	return 1
}

// stepMovement advances one car with closed doors by one tick. Only the head
// target bounds a power-mode jump; intermediate stops are not checked.
func stepMovement(e Elevator, floors int, mode OperationMode, rng Source) Elevator {
	e.TargetFloors = SortTargetFloors(e.CurrentFloor, e.Direction, e.TargetFloors)
	head, ok := e.HeadTarget()
	if !ok {
		e.Direction = DirIdle
		return e
	}
	if head == e.CurrentFloor {
		// Arrived; the door engine takes over.
		e.Direction = DeriveDirection(e.CurrentFloor, e.Direction, e.TargetFloors)
		return e
	}

	dir := DirUp
	if head < e.CurrentFloor {
		dir = DirDown
	}
	step := floorsPerTick(mode, abs(head-e.CurrentFloor), rng)

	next := e.CurrentFloor + step
	if dir == DirDown {
		next = e.CurrentFloor - step
	}
	if dir == DirUp && next > head {
		next = head
	}
	if dir == DirDown && next < head {
		next = head
	}
	next = max(1, min(next, floors))

	moved := abs(next - e.CurrentFloor)
	e.CurrentFloor = next
	e.Stats.TotalTravelTime++
	e.Stats.PowerConsumed += float64(moved) * mode.PowerUnit()

	if moved == 0 {
		// Eco wait tick: heading toward the target but holding position.
		e.Direction = dir
	} else {
		e.TargetFloors = SortTargetFloors(e.CurrentFloor, dir, e.TargetFloors)
		e.Direction = DeriveDirection(e.CurrentFloor, dir, e.TargetFloors)
	}
	e.LastDirection = dir
	return e
}
