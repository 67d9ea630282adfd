package processor

import (
	"context"
	"os"

	"demoreel/internal/pkg/errors"
	"demoreel/internal/ports"
)

// Published is where a video ended up.
type Published struct {
	ObjectKey string
	Size      int64
}

// Publish uploads the video at localPath under key.
func Publish(ctx context.Context, sp ports.StorageProvider, localPath, key string) (Published, error) {
	st, err := os.Stat(localPath)
	if err != nil {
		return Published{}, errors.Wrap(err, "processor.publish", "video not found")
	}

	f, err := os.Open(localPath)
	if err != nil {
		return Published{}, errors.Wrap(err, "processor.publish", "open video")
	}
	defer f.Close()

	out, err := sp.PutObject(ctx, ports.PutObjectInput{
		ObjectKey:   key,
		ContentType: "video/mp4",
		Reader:      f,
		Size:        st.Size(),
	})
	if err != nil {
		return Published{}, errors.Wrap(err, "processor.publish", "upload video").
			WithField("provider", sp.Provider())
	}
	size := out.Size
	if size == 0 {
		size = st.Size()
	}
	return Published{ObjectKey: out.ObjectKey, Size: size}, nil
}
