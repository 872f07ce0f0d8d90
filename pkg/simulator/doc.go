// Package simulator generates a continuous stream of synthetic clickstream
// events against the ingestion API.
//
// # Overview
//
// The simulator models a drifting population of users. Every emit tick one
// random user produces an event; the population size is resampled on a slower
// cadence so traffic composition shifts over time. Each user holds a bounded
// set of browsing sessions: an event either continues an existing session or,
// with a small probability, opens a new one, evicting the user's oldest
// session when the cap is reached.
//
// Sends are asynchronous with a bounded in-flight count, so a slow or
// unreachable backend slows the simulator down instead of piling up
// goroutines.
package simulator
