// Package event publishes notifications for resolved lifecycle operations
// so that observers (metrics exporters, admin surfaces) can track the
// live-group and key set without polling the shards.
package event
