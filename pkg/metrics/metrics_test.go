package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordUpload(t *testing.T) {
	before := testutil.ToFloat64(UploadBytesTotal.WithLabelValues("video"))

	RecordUpload("video", StatusSuccess, 1024)
	RecordUpload("video", StatusError, 4096)

	assert.Equal(t, before+1024, testutil.ToFloat64(UploadBytesTotal.WithLabelValues("video")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(UploadsTotal.WithLabelValues("video", StatusError)), 1.0)
}

func TestStatus(t *testing.T) {
	assert.Equal(t, StatusSuccess, Status(nil))
	assert.Equal(t, StatusError, Status(errors.New("x")))
}
