package domain

import (
	"time"
)

// PipelineSession is the metadata for one recommendation run. The transcript
// itself lives inside the running pipeline and is discarded when the run ends;
// only this envelope is visible to the transport layer.
type PipelineSession struct {
	ID        string
	Story     string
	CreatedAt time.Time
}
