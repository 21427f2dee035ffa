package engine

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/zephyrchess/zephyr/pkg/chess"
)

var errSearchTimeout = errors.New("search timeout")

type searchTask struct {
	depth         int
	startingMove  chess.Move // for move ordering
	startingScore int        // for the aspiration window
}

// lazySmp runs the workers. They share only the transposition table;
// coordination happens through the task and result channels, so the
// main line is folded on a single goroutine without locks.
func lazySmp(ctx context.Context, e *Engine) {
	var ml = e.genRootMoves()
	if len(ml) != 0 {
		e.mainLine = mainLine{
			depth: 0,
			score: 0,
			moves: []chess.Move{ml[0]},
		}
	}
	if len(ml) <= 1 {
		return
	}

	var tasks = make(chan searchTask)
	var taskResults = make(chan mainLine)

	var g, _ = errgroup.WithContext(ctx)
	for i := 0; i < e.Threads; i++ {
		var t = &e.threads[i]
		var rootMoves = cloneMoves(ml)
		g.Go(func() error {
			searchDepth(t, rootMoves, tasks, taskResults)
			return nil
		})
	}

	go func() {
		g.Wait()
		close(taskResults)
	}()

	iterativeDeepening(e, tasks, taskResults)
}

func iterativeDeepening(
	e *Engine,
	tasks chan<- searchTask,
	taskResults <-chan mainLine,
) {
	var searchCountByDepth [stackSize]int
	for {
		var task = searchTask{
			depth:         e.mainLine.depth + 1,
			startingMove:  e.mainLine.moves[0],
			startingScore: e.mainLine.score,
		}
		if task.depth < len(searchCountByDepth) &&
			searchCountByDepth[task.depth] >= (e.Threads+1)/2 {
			// enough workers on this depth already, push one deeper
			task.depth = e.mainLine.depth + 2
		}

		if task.depth > maxHeight ||
			e.timeManager.IsDone() {
			if tasks != nil {
				close(tasks)
				tasks = nil
			}
		}

		select {
		case taskResult, ok := <-taskResults:
			if !ok {
				// all workers finished
				return
			}
			e.mainLine.nodes += taskResult.nodes
			if betterLine(taskResult, e.mainLine) {
				e.mainLine.depth = taskResult.depth
				e.mainLine.score = taskResult.score
				e.mainLine.moves = taskResult.moves
				e.mainLine.worker = taskResult.worker
				e.timeManager.OnIterationComplete(e.mainLine)
				if e.progress != nil && e.mainLine.nodes >= int64(e.ProgressMinNodes) {
					e.progress(e.currentSearchResult())
				}
			}
		case tasks <- task:
			searchCountByDepth[task.depth]++
		}
	}
}

// betterLine decides whether a finished iteration replaces the current
// main line: strictly deeper always wins, at equal depth a strictly
// higher score wins, and an exact tie goes to the lowest worker index
// so repeated runs with the same inputs pick the same line regardless
// of arrival order.
func betterLine(candidate, current mainLine) bool {
	if candidate.depth != current.depth {
		return candidate.depth > current.depth
	}
	if candidate.score != current.score {
		return candidate.score > current.score
	}
	return candidate.worker < current.worker
}

func searchDepth(
	t *thread,
	ml []chess.Move,
	tasks <-chan searchTask,
	taskResults chan<- mainLine,
) {
	defer func() {
		if r := recover(); r != nil {
			if r == errSearchTimeout {
				return
			}
			panic(r)
		}
	}()

	const height = 0
	for h := 0; h <= 2; h++ {
		t.stack[h].killer1 = chess.MoveEmpty
		t.stack[h].killer2 = chess.MoveEmpty
	}

	for task := range tasks {
		if task.startingMove != chess.MoveEmpty {
			var index = findMoveIndex(ml, task.startingMove)
			if index >= 0 {
				moveToBegin(ml, index)
			}
		}
		var score = aspirationWindow(t, ml, task.depth, task.startingScore)
		taskResults <- mainLine{
			depth:  task.depth,
			score:  score,
			moves:  t.stack[height].pv.toSlice(),
			nodes:  t.nodes,
			worker: t.index,
		}
		t.nodes = 0
	}
}
