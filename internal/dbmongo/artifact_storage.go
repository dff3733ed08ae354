package dbmongo

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"

	"modguard/internal/classifier"
)

// Fixed GridFS filename for the current model artifact. Replacing the
// artifact deletes any prior revisions under this name first, so lookups
// by filename always resolve to exactly one file.
const artifactFilename = "content_classifier.json"

// ArtifactStorage keeps the serialized classifier in a GridFS bucket,
// for deployments where instances share models through MongoDB instead
// of a local filesystem.
type ArtifactStorage struct {
	gridFS *gridfs.Bucket
}

var _ classifier.ArtifactStore = (*ArtifactStorage)(nil)

func NewArtifactStorage(mongoClient *MongoClient) *ArtifactStorage {
	return &ArtifactStorage{
		gridFS: mongoClient.GridFS,
	}
}

func (s *ArtifactStorage) Save(ctx context.Context, data []byte) error {
	if err := s.deleteExisting(ctx); err != nil {
		return err
	}

	stream, err := s.gridFS.OpenUploadStream(artifactFilename)
	if err != nil {
		return fmt.Errorf("open artifact upload: %w", err)
	}

	if _, err := stream.Write(data); err != nil {
		stream.Close()
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := stream.Close(); err != nil {
		return fmt.Errorf("close artifact upload: %w", err)
	}
	return nil
}

func (s *ArtifactStorage) Load(ctx context.Context) ([]byte, error) {
	stream, err := s.gridFS.OpenDownloadStreamByName(artifactFilename)
	if err != nil {
		return nil, fmt.Errorf("open artifact download: %w", err)
	}
	defer stream.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, stream); err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *ArtifactStorage) Info(ctx context.Context) (classifier.ArtifactInfo, error) {
	cursor, err := s.gridFS.Find(bson.M{"filename": artifactFilename})
	if err != nil {
		return classifier.ArtifactInfo{}, fmt.Errorf("find artifact: %w", err)
	}
	defer cursor.Close(ctx)

	info := classifier.ArtifactInfo{Location: "gridfs://" + artifactFilename}
	for cursor.Next(ctx) {
		var file gridfs.File
		if err := cursor.Decode(&file); err != nil {
			return classifier.ArtifactInfo{}, fmt.Errorf("decode artifact metadata: %w", err)
		}
		info.Exists = true
		if file.UploadDate.After(info.LastModified) {
			info.LastModified = file.UploadDate
		}
	}
	if err := cursor.Err(); err != nil {
		return classifier.ArtifactInfo{}, fmt.Errorf("iterate artifact metadata: %w", err)
	}
	return info, nil
}

func (s *ArtifactStorage) deleteExisting(ctx context.Context) error {
	cursor, err := s.gridFS.Find(bson.M{"filename": artifactFilename})
	if err != nil {
		return fmt.Errorf("find prior artifacts: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var file gridfs.File
		if err := cursor.Decode(&file); err != nil {
			return fmt.Errorf("decode prior artifact: %w", err)
		}
		if err := s.gridFS.Delete(file.ID); err != nil && err != mongo.ErrNoDocuments {
			return fmt.Errorf("delete prior artifact: %w", err)
		}
	}
	return cursor.Err()
}
