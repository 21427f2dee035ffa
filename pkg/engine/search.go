package engine

import (
	"sync/atomic"

	"github.com/zephyrchess/zephyr/pkg/chess"
)

// Search tunables. Depth units throughout; margins in centipawns.
const (
	pawnValue = 100

	aspirationMargin  = 25
	rfpMaxDepth       = 8
	rfpMargin         = 120
	nullMinDepth      = 2
	nullBaseReduction = 3
	nullDepthDivisor  = 4
	probcutMinDepth   = 5
	probcutMargin     = 150
	singularMinDepth  = 8
	lmrMinDepth       = 2
	lmrFullMoves      = 2
)

// aspirationWindow brackets the root search in a narrow interval
// around the previous iteration's score. A result landing on either
// edge reopens that side to the full range and searches again, so the
// loop always terminates with a contained score.
func aspirationWindow(t *thread, ml []chess.Move, depth, prevScore int) int {
	t.rootDepth = depth
	var alpha, beta = -valueInfinity, valueInfinity
	if t.engine.Options.AspirationWindows && depth >= 5 &&
		prevScore > valueLoss && prevScore < valueWin {
		alpha = prevScore - aspirationMargin
		beta = prevScore + aspirationMargin
	}
	for {
		var score = searchRoot(t, ml, alpha, beta, depth)
		if score <= alpha && alpha > -valueInfinity {
			alpha = -valueInfinity
			continue
		}
		if score >= beta && beta < valueInfinity {
			beta = valueInfinity
			continue
		}
		return score
	}
}

// searchRoot drives the move loop at height 0 over the pre-generated
// legal root moves, first move with the full window, the rest through
// zero-window scouts. The root list is already rotated so the best
// move of the previous iteration is searched first.
func searchRoot(t *thread, ml []chess.Move, alpha, beta, depth int) int {
	const height = 0
	var p = &t.stack[height].position
	t.evaluator.Init(p)
	t.clearPV(height)

	var oldAlpha = alpha
	var best = -valueInfinity
	var bestMove chess.Move

	for i, move := range ml {
		if !t.makeMove(move, height) {
			continue
		}
		var score int
		if i == 0 {
			score = -t.alphaBeta(-beta, -alpha, depth-1, height+1, 0)
		} else {
			score = -t.alphaBeta(-(alpha + 1), -alpha, depth-1, height+1, 0)
			if score > alpha && score < beta {
				score = -t.alphaBeta(-beta, -alpha, depth-1, height+1, 0)
			}
		}
		t.unmakeMove()

		if score > best {
			best = score
			bestMove = move
		}
		if score > alpha {
			alpha = score
			t.assignPV(height, move)
			if alpha >= beta {
				break
			}
		}
	}

	if best > oldAlpha {
		var bound = boundExact
		if best >= beta {
			bound = boundLower
		}
		t.engine.transTable.Update(p.Key, depth, valueToTT(best, height), bound, bestMove)
	}
	return best
}

func (t *thread) alphaBeta(alpha, beta, depth, height int, skipMove chess.Move) int {
	var pvNode = beta != alpha+1
	var position = &t.stack[height].position
	var isCheck = position.IsCheck()

	// a check is never the horizon
	if isCheck && t.engine.Options.CheckExt {
		depth++
	}
	if depth <= 0 {
		return t.quiescence(alpha, beta, 1, height)
	}
	t.clearPV(height)

	if height >= maxHeight {
		return t.evaluator.EvaluateQuick(position)
	}
	if t.isRepeat(height) || isDraw(position) {
		return valueDraw
	}

	// mate distance pruning: no line from here can beat a mate
	// already scored closer to the root
	alpha = chess.Max(alpha, lossIn(height))
	beta = chess.Min(beta, winIn(height)-1)
	if alpha >= beta {
		return alpha
	}

	var (
		ttDepth, ttValue, ttBound int
		ttMove                    chess.Move
		ttHit                     bool
	)
	if skipMove == 0 {
		ttDepth, ttValue, ttBound, ttMove, ttHit = t.engine.transTable.Read(position.Key)
	}
	if ttHit {
		ttValue = valueFromTT(ttValue, height)
		if ttDepth >= depth && !pvNode {
			switch ttBound {
			case boundExact:
				return ttValue
			case boundLower:
				if ttMove != chess.MoveEmpty && !ttMove.IsCaptureOrPromotion() {
					t.updateKiller(ttMove, height)
				}
				alpha = chess.Max(alpha, ttValue)
			case boundUpper:
				beta = chess.Min(beta, ttValue)
			}
			if alpha >= beta {
				return ttValue
			}
		}
	}

	var staticEval = t.evaluator.EvaluateQuick(position)
	t.stack[height].staticEval = staticEval
	var improving = height < 2 || staticEval > t.stack[height-2].staticEval

	var options = &t.engine.Options
	if height+2 <= maxHeight {
		t.stack[height+2].killer1 = chess.MoveEmpty
		t.stack[height+2].killer2 = chess.MoveEmpty
	}
	var child = &t.stack[height+1].position
	var ttMoveIsSingular = false

	if !isCheck && skipMove == 0 {

		// reverse futility pruning: a static eval this far above beta
		// rarely comes back down within a few plies
		if options.ReverseFutility && !pvNode && depth <= rfpMaxDepth &&
			beta < valueWin && staticEval-rfpMargin*depth >= beta {
			return staticEval
		}

		// null-move pruning; skipped without non-pawn material, where
		// handing over the move is often the best plan
		if options.NullMovePruning && !pvNode && depth >= nullMinDepth &&
			staticEval >= beta && beta < valueWin &&
			position.LastMove != chess.MoveEmpty &&
			hasNonPawnMaterial(position, position.Side) {
			var reduction = nullBaseReduction + (depth-nullMinDepth)/nullDepthDivisor
			t.makeMove(chess.MoveEmpty, height)
			var score = -t.alphaBeta(-beta, -(beta - 1), depth-1-reduction, height+1, 0)
			t.unmakeMove()
			if score >= beta {
				if score >= valueWin {
					score = beta
				}
				return score
			}
		}

		// probcut: a good capture that beats beta by a margin in a
		// shallow verification is trusted to hold at full depth
		var probcutBeta = chess.Min(valueWin-1, beta+probcutMargin)
		if options.Probcut && !pvNode && depth >= probcutMinDepth &&
			beta > valueLoss && beta < valueWin &&
			!(ttHit && ttDepth >= depth-4 && ttValue < probcutBeta && ttBound == boundUpper) {

			var mi = moveIteratorQS{
				position: position,
				buffer:   t.stack[height].moveList[:],
				scratch:  t.stack[height].genBuffer[:],
			}
			mi.Init()

			for mi.Reset(); ; {
				var move = mi.Next()
				if move == chess.MoveEmpty {
					break
				}
				if !seeGEZero(position, move) {
					continue
				}
				if !t.makeMove(move, height) {
					continue
				}
				var score = -t.quiescence(-probcutBeta, -probcutBeta+1, 0, height+1)
				if score >= probcutBeta {
					score = -t.alphaBeta(-probcutBeta, -probcutBeta+1, depth-4, height+1, 0)
				}
				t.unmakeMove()
				if score >= probcutBeta {
					return score
				}
			}
		}

		// singular extension: re-search without the hash move far
		// below its score; failing low means it is the only move
		if options.SingularExt && depth >= singularMinDepth &&
			ttHit && ttMove != chess.MoveEmpty &&
			(ttBound&boundLower) != 0 && ttDepth >= depth-3 &&
			ttValue > valueLoss && ttValue < valueWin {
			var singularBeta = chess.Max(-valueInfinity, ttValue-depth)
			var score = t.alphaBeta(singularBeta-1, singularBeta, depth/2, height, ttMove)
			ttMoveIsSingular = score < singularBeta
		}
	}

	var history = t.getHistoryContext(height)
	var mi = t.initMoveIterator(height, ttMove)
	var killer1 = t.stack[height].killer1
	var killer2 = t.stack[height].killer2

	var lmpLimit = 5 + (depth-1)*depth
	if !improving {
		lmpLimit /= 2
	}

	var moveCount = 0
	var hasLegalMove = false
	var quietsSeen = 0
	var quietsSearched = t.stack[height].quietsSearched[:0]

	var best = -valueInfinity
	var bestMove chess.Move
	var oldAlpha = alpha

	for mi.Reset(); ; {
		var move = mi.Next()
		if move == chess.MoveEmpty {
			break
		}
		if move == skipMove {
			continue
		}
		var quiet = !move.IsCaptureOrPromotion()
		var ordinary = quiet && move != killer1 && move != killer2
		if quiet {
			quietsSeen++
		}

		if depth <= 8 && best > valueLoss && hasLegalMove && !isCheck {
			// late move pruning
			if options.Lmp && ordinary && quietsSeen > lmpLimit {
				continue
			}

			// futility pruning
			if options.Futility && ordinary &&
				staticEval+pawnValue+pawnValue*depth <= alpha {
				continue
			}

			// skip moves losing too much material
			if options.See {
				var seeMargin int
				if quiet {
					seeMargin = depth / 2
				} else {
					seeMargin = chess.Max(depth, (staticEval+pawnValue-alpha)/pawnValue)
				}
				if !SeeGE(position, move, -seeMargin) {
					continue
				}
			}
		}

		if !t.makeMove(move, height) {
			continue
		}
		hasLegalMove = true
		moveCount++

		var extension = 0
		if move == ttMove && ttMoveIsSingular {
			extension = 1
		}
		var newDepth = depth - 1 + extension

		var reduction = 0
		if depth >= lmrMinDepth && moveCount > lmrFullMoves && quiet {
			reduction = options.Lmr(depth, moveCount)
			if !ordinary {
				reduction--
			}
			if !isCheck {
				reduction -= chess.Max(-2, chess.Min(2, history.ReadTotal(move)/5000))
				if !improving {
					reduction++
				}
			}
			if pvNode {
				reduction -= 2
			}
			if isCheck || child.IsCheck() {
				reduction--
			}
			reduction = chess.Max(0, chess.Min(newDepth-1, reduction))
		}

		if quiet {
			quietsSearched = append(quietsSearched, move)
		}

		var score int
		if moveCount == 1 {
			score = -t.alphaBeta(-beta, -alpha, newDepth, height+1, 0)
		} else {
			score = -t.alphaBeta(-(alpha + 1), -alpha, newDepth-reduction, height+1, 0)
			if score > alpha && reduction > 0 {
				score = -t.alphaBeta(-(alpha + 1), -alpha, newDepth, height+1, 0)
			}
			if score > alpha && score < beta {
				score = -t.alphaBeta(-beta, -alpha, newDepth, height+1, 0)
			}
		}
		t.unmakeMove()

		if score > best {
			best = score
			bestMove = move
		}
		if score > alpha {
			alpha = score
			t.assignPV(height, move)
			if alpha >= beta {
				break
			}
		}
	}

	if !hasLegalMove {
		if !isCheck && skipMove == 0 {
			return valueDraw
		}
		return lossIn(height)
	}

	if alpha > oldAlpha && bestMove != chess.MoveEmpty && !bestMove.IsCaptureOrPromotion() {
		history.Update(quietsSearched, bestMove, depth)
		t.updateKiller(bestMove, height)
	}

	if skipMove == 0 {
		var bound = 0
		if best > oldAlpha {
			bound |= boundLower
		}
		if best < beta {
			bound |= boundUpper
		}
		t.engine.transTable.Update(position.Key, depth, valueToTT(best, height), bound, bestMove)
	}

	return best
}

// quiescence resolves captures until the position is quiet. While
// depth is positive the move list also carries direct checking moves,
// so forcing lines just past the horizon are not missed.
func (t *thread) quiescence(alpha, beta, depth, height int) int {
	t.clearPV(height)
	var position = &t.stack[height].position
	if isDraw(position) {
		return valueDraw
	}
	if height >= maxHeight {
		return t.evaluator.EvaluateQuick(position)
	}
	if t.isRepeat(height) {
		return valueDraw
	}

	var _, ttValue, ttBound, _, ttHit = t.engine.transTable.Read(position.Key)
	if ttHit {
		ttValue = valueFromTT(ttValue, height)
		switch ttBound {
		case boundExact:
			return ttValue
		case boundLower:
			if ttValue >= beta {
				return ttValue
			}
		case boundUpper:
			if ttValue <= alpha {
				return ttValue
			}
		}
	}

	var isCheck = position.IsCheck()
	var best = -valueInfinity
	if !isCheck {
		// stand pat
		var eval = t.evaluator.EvaluateQuick(position)
		best = chess.Max(best, eval)
		if eval > alpha {
			alpha = eval
			if alpha >= beta {
				return alpha
			}
		}
	}
	var mi = moveIteratorQS{
		position:  position,
		buffer:    t.stack[height].moveList[:],
		scratch:   t.stack[height].genBuffer[:],
		genChecks: depth > 0,
	}
	mi.Init()
	var hasLegalMove = false
	for mi.Reset(); ; {
		var move = mi.Next()
		if move == chess.MoveEmpty {
			break
		}
		if !isCheck && move.IsCaptureOrPromotion() && !seeGEZero(position, move) {
			continue
		}
		if !t.makeMove(move, height) {
			continue
		}
		hasLegalMove = true
		var score = -t.quiescence(-beta, -alpha, depth-1, height+1)
		t.unmakeMove()
		best = chess.Max(best, score)
		if score > alpha {
			alpha = score
			t.assignPV(height, move)
			if alpha >= beta {
				break
			}
		}
	}
	if isCheck && !hasLegalMove {
		return lossIn(height)
	}
	return best
}

func (t *thread) incNodes() {
	t.nodes++
	if t.nodes&255 == 0 {
		var total = atomic.AddInt64(&t.engine.nodes, 256)
		t.engine.timeManager.OnNodesChanged(int(total))
		if t.engine.timeManager.IsDone() {
			panic(errSearchTimeout)
		}
	}
}

func isDraw(p *chess.Position) bool {
	if p.Rule50 >= 100 {
		return true
	}

	if (p.Pieces[chess.Pawn]|p.Pieces[chess.Rook]|p.Pieces[chess.Queen]) == 0 &&
		!chess.MoreThanOne(p.Pieces[chess.Knight]|p.Pieces[chess.Bishop]) {
		return true
	}

	return false
}

// isRepeat walks the search stack first and falls back to the game
// history map once past the root.
func (t *thread) isRepeat(height int) bool {
	var p = &t.stack[height].position

	if p.Rule50 == 0 || p.LastMove == chess.MoveEmpty {
		return false
	}
	for i := height - 1; i >= 0; i-- {
		var temp = &t.stack[i].position
		if temp.Key == p.Key {
			return true
		}
		if temp.Rule50 == 0 || temp.LastMove == chess.MoveEmpty {
			return false
		}
	}

	return t.engine.historyKeys[p.Key] >= 2
}

func findMoveIndex(ml []chess.Move, move chess.Move) int {
	for i := range ml {
		if ml[i] == move {
			return i
		}
	}
	return -1
}

func moveToBegin(ml []chess.Move, index int) {
	if index == 0 {
		return
	}
	var item = ml[index]
	for i := index; i > 0; i-- {
		ml[i] = ml[i-1]
	}
	ml[0] = item
}

func cloneMoves(ml []chess.Move) []chess.Move {
	var result = make([]chess.Move, len(ml))
	copy(result, ml)
	return result
}

// genRootMoves filters the root move list through makeMove so only
// legal moves reach the deepening loop, ordered by the iterator.
func (e *Engine) genRootMoves() []chess.Move {
	var t = &e.threads[0]
	const height = 0
	var p = &t.stack[height].position
	_, _, _, transMove, _ := e.transTable.Read(p.Key)

	var mi = t.initMoveIterator(height, transMove)

	var result []chess.Move
	var child = &t.stack[height+1].position
	for mi.Reset(); ; {
		var move = mi.Next()
		if move == chess.MoveEmpty {
			break
		}
		if p.MakeMove(move, child) {
			result = append(result, move)
		}
	}
	return result
}

func (t *thread) updateKiller(move chess.Move, height int) {
	if t.stack[height].killer1 != move {
		t.stack[height].killer2 = t.stack[height].killer1
		t.stack[height].killer1 = move
	}
}

func (t *thread) clearPV(height int) {
	t.stack[height].pv.clear()
}

func (t *thread) assignPV(height int, move chess.Move) {
	if height+1 < stackSize {
		t.stack[height].pv.assign(move, &t.stack[height+1].pv)
	}
}

func (t *thread) makeMove(move chess.Move, height int) bool {
	var pos = &t.stack[height].position
	var child = &t.stack[height+1].position
	if move == chess.MoveEmpty {
		pos.MakeNullMove(child)
	} else {
		if !pos.MakeMove(move, child) {
			return false
		}
	}
	t.evaluator.MakeMove(pos, move)
	t.incNodes()
	return true
}

func (t *thread) unmakeMove() {
	t.evaluator.UnmakeMove()
}
