// Package processor runs the room-processor service.
//
// Bus deliveries are decoded and handed to a sharded Dispatcher: the room key
// picks a shard, and every shard is drained by its own worker. Messages of one
// room are therefore applied in arrival order while different rooms proceed
// in parallel. The liveness monitor runs next to the dispatcher.
package processor
