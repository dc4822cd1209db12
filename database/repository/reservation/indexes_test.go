package reservationRepo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservationIndexesKeepIDsUnique(t *testing.T) {
	models := reservationIndexModels()
	require.NotEmpty(t, models)

	var found bool
	for _, m := range models {
		keys, ok := m.Keys.(bson.D)
		require.True(t, ok)
		if len(keys) == 1 && keys[0].Key == "id" {
			found = true
			require.NotNil(t, m.Options.Unique)
			assert.True(t, *m.Options.Unique)
		}
	}
	assert.True(t, found, "reservations need a unique id index")
}
