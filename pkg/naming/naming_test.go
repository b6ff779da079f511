package naming_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mvc/pkg/naming"
)

func TestConvert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to naming.Convention
		in, want string
	}{
		{naming.Hyphen, naming.Camel, "foo-bar", "FooBar"},
		{naming.Hyphen, naming.Camel, "index", "Index"},
		{naming.Hyphen, naming.Camel, "v-2", "V-2"},
		{naming.Hyphen, naming.Underscore, "foo-bar", "foo_bar"},
		{naming.Underscore, naming.Camel, "user_settings", "UserSettings"},
		{naming.Camel, naming.Underscore, "UserSettings", "user_settings"},
		{naming.Camel, naming.Hyphen, "FooBar", "foo-bar"},
		{naming.Camel, naming.Camel, "fooBar", "FooBar"},
		{naming.Hyphen, naming.Camel, "", ""},
	}

	for _, tt := range tests {
		got, err := naming.Convert(tt.from, tt.to, tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestConvert_Unknown(t *testing.T) {
	t.Parallel()

	_, err := naming.Convert(naming.Convention(9), naming.Camel, "x")
	require.ErrorIs(t, err, naming.ErrUnknownConvention)

	_, err = naming.Convert(naming.Camel, naming.Convention(9), "x")
	require.ErrorIs(t, err, naming.ErrUnknownConvention)
}

func TestControllerAndAction(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "FooBar", naming.Controller("foo-bar"))
	assert.Equal(t, "do_thing", naming.Action("do-thing"))
	assert.Equal(t, "default_index", naming.Action("default_index"))
}
