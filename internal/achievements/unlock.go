package achievements

import "github.com/samber/lo"

// LevelUnlocked reports whether a level in a strictly sequential chain is playable
func LevelUnlocked(completed []int, level int) bool {
	return level == 1 || (level > 1 && lo.Contains(completed, level-1))
}

// UnlockedLevels rebuilds the unlocked set of a chain of levelCount levels from
// its completed levels. Level 1 is always unlocked.
func UnlockedLevels(completed []int, levelCount int) []int {
	unlocked := []int{1}
	for level := 2; level <= levelCount; level++ {
		if LevelUnlocked(completed, level) {
			unlocked = append(unlocked, level)
		}
	}
	return unlocked
}

// NewlyUnlocked returns the level that completing `level` unlocks, if that
// completion is new and a next level exists
func NewlyUnlocked(completedBefore []int, level, levelCount int) (int, bool) {
	if lo.Contains(completedBefore, level) || level >= levelCount || level < 1 {
		return 0, false
	}
	return level + 1, true
}
