// Package events reacts to the storage layer's asynchronous "object
// created" notifications and advances file records through their
// lifecycle.
package events

// ObjectCreatedEvent is the EventBridge-shaped S3 notification carried on
// the queue. Only the fields this service consumes are declared.
type ObjectCreatedEvent struct {
	DetailType string             `json:"detail-type"`
	Detail     ObjectCreateDetail `json:"detail"`
}

type ObjectCreateDetail struct {
	Bucket struct {
		Name string `json:"name"`
	} `json:"bucket"`
	Object struct {
		Key  string `json:"key"`
		Size int64  `json:"size"`
	} `json:"object"`
	Reason string `json:"reason"`
}
