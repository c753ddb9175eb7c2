/*
package server provides the round coordinator that sits between callers (the
CLI and the HTTP API) and the scheduling algorithms.

* Concepts *
Round:
  One complete, synchronous scheduling call over a batch of tasks and nodes.
  Every round gets a RoundID and is independent of the others, apart from the
  historical ledger.

Algorithm:
  bestfit       greedy best fit over node speed and uptime, usage is busy time.
  knapsack      exact 0/1 selection, node by node over the remaining pool.
  roundrobin    fairness policy ranking nodes by raw usage plus history.
  proportional  fairness policy ranking nodes by (usage + history) / capacity.
  The capacity based algorithms record usage in cost units.

Historical ledger:
  Usage per node name accumulated across rounds. When a request carries no
  ledger, the round loads the snapshot from the configured ledger.Store and
  commits its usage back; rounds on one coordinator are serialized so the
  load/commit pair never interleaves. When a request carries a ledger, that
  ledger is the snapshot and nothing is persisted.

Failures:
  Invalid input is rejected before anything runs or is loaded. A round whose
  commit fails still returns its result, together with the error.
*/
package server
