package main

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/require"

	"github.com/resizeto/resizeto/internal/digestutil"
	"github.com/resizeto/resizeto/internal/testutil"
	"github.com/resizeto/resizeto/pkg/store/variantstore"
)

func message(t *testing.T, key string) events.SQSMessage {
	digest := testutil.Must(multihash.Sum([]byte(key), multihash.SHA2_256, -1))(t)
	return events.SQSMessage{
		MessageId: key,
		Body:      fmt.Sprintf(`{"key":%q,"source":"a.jpg","bucket":"processed","contentType":"image/jpeg","size":1,"digest":%q}`, key, digestutil.Format(digest)),
	}
}

func TestHandler(t *testing.T) {
	t.Run("indexes every record", func(t *testing.T) {
		index := variantstore.NewMapVariantIndex()
		handler := makeHandler(index)

		err := handler(context.Background(), events.SQSEvent{Records: []events.SQSMessage{
			message(t, "width:1/a.jpg"),
			message(t, "width:2/a.jpg"),
		}})
		require.NoError(t, err)

		variants, err := index.List(context.Background(), "a.jpg")
		require.NoError(t, err)
		require.Len(t, variants, 2)
		require.Equal(t, "width:1/a.jpg", variants[0].Key)
	})

	t.Run("bad message fails the batch", func(t *testing.T) {
		index := variantstore.NewMapVariantIndex()
		handler := makeHandler(index)

		err := handler(context.Background(), events.SQSEvent{Records: []events.SQSMessage{
			message(t, "width:1/a.jpg"),
			{MessageId: "broken", Body: "{"},
		}})
		require.ErrorContains(t, err, "decoding message broken")
		require.Equal(t, 1, index.Len())
	})
}
