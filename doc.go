/*
Package desim provides a small deterministic discrete-event simulation kernel
for modelling hardware blocks that mix reactive logic with timed behaviour.

A Scheduler owns simulated time, a queue of timed wake-ups and the set of
runnable processes. Signals carry values between processes with delta-cycle
semantics: a write only becomes visible once every process runnable in the
current round has run, at which point all pending writes are committed at
once and the processes sensitive to the changes are woken for the next round.

Processes are plain functions called on every wake-up. A process either
relies on its static sensitivity (the events given to Spawn) or arms a
one-shot dynamic wait before returning:

	s := desim.New()
	clk, _ := desim.NewClock(s, "clk", 10)
	count := 0
	s.Spawn("counter", func(p *desim.Process) {
		if p.Cause() == clk.Posedge() {
			count++
		}
	}, clk.Posedge())
	s.RunUntil(100)

Everything runs on the caller's goroutine. Nothing in this package is safe
for concurrent use, and nothing needs to be.

*/
package desim
