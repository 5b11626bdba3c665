package boundary

import (
	"errors"
	"fmt"
	"io/ioutil"

	"cloud.google.com/go/storage"
	"github.com/golang/snappy"
	"golang.org/x/net/context"
)

const boundaryObjName = "boundaries/%s.wkb.snp"

// Store resolves a lower-cased 2-letter region code to its boundary
// geometry as WKB in WGS84 coordinates. A missing code is reported as
// *ErrNotFound so callers can tell it apart from transport failures.
type Store interface {
	Boundary(ctx context.Context, code Code) ([]byte, error)
}

// GCSStore reads snappy-compressed WKB boundaries from a storage bucket,
// one object per region code.
type GCSStore struct {
	bucket string
	client *storage.Client
}

func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("Error creating client: %v", err)
	}
	return &GCSStore{bucket: bucket, client: client}, nil
}

func (s *GCSStore) Boundary(ctx context.Context, code Code) ([]byte, error) {
	objName := fmt.Sprintf(boundaryObjName, code)

	r, err := s.client.Bucket(s.bucket).Object(objName).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, &ErrNotFound{Code: string(code)}
		}
		return nil, fmt.Errorf("Error creating object reader: %s object: %s: %v", s.bucket, objName, err)
	}
	defer r.Close()

	cdata, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("Error reading from object: %s object: %s: %v", s.bucket, objName, err)
	}

	data, err := snappy.Decode(nil, cdata)
	if err != nil {
		return nil, fmt.Errorf("Error decompressing data: %s object: %s: %v", s.bucket, objName, err)
	}

	return data, nil
}

// MemStore is an in-memory Store keyed by lower-cased code.
type MemStore map[Code][]byte

func (s MemStore) Boundary(ctx context.Context, code Code) ([]byte, error) {
	wkb, ok := s[code]
	if !ok {
		return nil, &ErrNotFound{Code: string(code)}
	}
	return wkb, nil
}
