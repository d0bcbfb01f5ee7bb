package transaction

import (
	"time"

	"github.com/google/uuid"
)

// nowFunc is swapped in tests.
var nowFunc = time.Now

func newPairID() string {
	return uuid.NewString()
}
