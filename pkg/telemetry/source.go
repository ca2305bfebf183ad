package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ResultFile is a discovered result together with its location in the source.
type ResultFile struct {
	ResultName
	Location string
}

// Source enumerates and loads persisted run records.
type Source interface {
	List(ctx context.Context) ([]ResultFile, error)
	Load(ctx context.Context, file ResultFile) (*RunRecord, error)
}

func ReadRunRecord(r io.Reader) (*RunRecord, error) {
	var record RunRecord
	if err := json.NewDecoder(r).Decode(&record); err != nil {
		return nil, errors.Wrap(err, "decoding run record")
	}
	return &record, nil
}

func ReadRunRecordFile(filePath string) (*RunRecord, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "opening run record")
	}
	defer f.Close()

	record, err := ReadRunRecord(f)
	if err != nil {
		return nil, errors.Wrap(err, filePath)
	}
	return record, nil
}

func WriteRunRecordFile(filePath string, record *RunRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding run record")
	}
	return errors.Wrap(os.WriteFile(filePath, data, 0644), filePath)
}

func sortResults(files []ResultFile) {
	sort.Slice(files, func(i, j int) bool {
		a, b := files[i].ResultName, files[j].ResultName
		if a.Benchmark != b.Benchmark {
			return a.Benchmark < b.Benchmark
		}
		if a.Backend != b.Backend {
			return a.Backend < b.Backend
		}
		return a.Replica < b.Replica
	})
}

// DirSource reads results from a local directory.
type DirSource struct {
	Dir string
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{Dir: dir}
}

func (ds *DirSource) List(_ context.Context) ([]ResultFile, error) {
	entries, err := os.ReadDir(ds.Dir)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open the results directory")
	}

	var files []ResultFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, err := ParseResultName(entry.Name())
		if err != nil {
			log.Debug("Skipping ", entry.Name(), ": ", err)
			continue
		}
		files = append(files, ResultFile{ResultName: name, Location: filepath.Join(ds.Dir, entry.Name())})
	}
	sortResults(files)

	return files, nil
}

func (ds *DirSource) Load(_ context.Context, file ResultFile) (*RunRecord, error) {
	return ReadRunRecordFile(file.Location)
}

// BucketConfig locates results in an S3 compatible object store. A non-empty
// Region skips the bucket location lookup.
type BucketConfig struct {
	Endpoint  string `json:"Endpoint"`
	AccessKey string `json:"AccessKey"`
	SecretKey string `json:"SecretKey"`
	Bucket    string `json:"Bucket"`
	Prefix    string `json:"Prefix"`
	Secure    bool   `json:"Secure"`
	Region    string `json:"Region"`
}

// BucketSource reads results from an S3 compatible bucket.
type BucketSource struct {
	client *minio.Client
	bucket string
	prefix string
}

func NewBucketSource(cfg BucketConfig) (*BucketSource, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "creating object store client for %s", cfg.Endpoint)
	}

	return &BucketSource{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

func (bs *BucketSource) List(ctx context.Context) ([]ResultFile, error) {
	// stops the listing goroutine when returning before the channel drains
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var files []ResultFile
	for object := range bs.client.ListObjects(ctx, bs.bucket, minio.ListObjectsOptions{
		Prefix:    bs.prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, errors.Wrapf(object.Err, "listing bucket %s", bs.bucket)
		}
		name, err := ParseResultName(path.Base(object.Key))
		if err != nil {
			log.Debug("Skipping ", object.Key, ": ", err)
			continue
		}
		files = append(files, ResultFile{ResultName: name, Location: object.Key})
	}
	sortResults(files)

	return files, nil
}

func (bs *BucketSource) Load(ctx context.Context, file ResultFile) (*RunRecord, error) {
	object, err := bs.client.GetObject(ctx, bs.bucket, file.Location, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s/%s", bs.bucket, file.Location)
	}
	defer object.Close()

	record, err := ReadRunRecord(object)
	if err != nil {
		return nil, errors.Wrapf(err, "%s/%s", bs.bucket, file.Location)
	}
	return record, nil
}

// Upload stores a local result file under the source prefix.
func (bs *BucketSource) Upload(ctx context.Context, filePath string) (string, error) {
	key := path.Join(bs.prefix, filepath.Base(filePath))
	info, err := bs.client.FPutObject(ctx, bs.bucket, key, filePath, minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", errors.Wrapf(err, "uploading %s", filePath)
	}
	return path.Join(bs.bucket, info.Key), nil
}
