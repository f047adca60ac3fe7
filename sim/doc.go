// Package sim provides the core multi-robot warehouse simulation.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - robot.go: Robot movement inside its domain and the naive heuristics
//   - router.go: Domain-local grid graph and all-pairs shortest paths
//   - observation.go: Global state bitmap and per-robot image/vector encodings
//   - warehouse.go: Reset, the step pipeline (act, reward, remove, age, spawn)
//
// # Architecture
//
// The sim package owns state and transitions only; collaborators live in
// sub-packages and sibling packages:
//   - sim/policy/: Action suppliers built on the robot heuristics
//   - sim/trace/: Per-step episode records
//   - store/: Compressed trace logs and the SQLite episode index
//   - render/: Terminal render surface
//
// # Determinism
//
// All randomness comes from one injected *rand.Rand (SubsystemWarehouse of a
// PartitionedRNG), shared by item spawning and robot fallback actions.
// Reseeding it and replaying the same actions reproduces an episode.
package sim
