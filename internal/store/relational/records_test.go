package relational

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	pg := Dialect{Numbered: true}
	assert.Equal(t, "UPDATE users SET topic = $1 WHERE user_id = $2", pg.rebind("UPDATE users SET topic = ? WHERE user_id = ?"))

	lite := Dialect{}
	assert.Equal(t, "SELECT ? FROM t", lite.rebind("SELECT ? FROM t"))
}
