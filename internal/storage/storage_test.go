package storage

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := NewLocal(t.TempDir())

	require.NoError(t, st.Put(ctx, "orders/выходы/a.xlsx", []byte("a"), XLSXContentType))
	require.NoError(t, st.Put(ctx, "orders/выходы/b.csv", []byte("b"), "text/csv"))
	require.NoError(t, st.Put(ctx, "orders/готовые/c.xlsx", []byte("c"), XLSXContentType))

	data, err := st.Get(ctx, "orders/выходы/a.xlsx")
	require.NoError(t, err)
	require.Equal(t, []byte("a"), data)

	keys, err := st.List(ctx, "orders/выходы/")
	require.NoError(t, err)
	require.Equal(t, []string{"orders/выходы/a.xlsx", "orders/выходы/b.csv"}, keys)

	keys, err = st.List(ctx, "missing/")
	require.NoError(t, err)
	require.Empty(t, keys)

	require.NoError(t, st.Delete(ctx, "orders/выходы/a.xlsx"))
	_, err = st.Get(ctx, "orders/выходы/a.xlsx")
	require.True(t, errors.Is(err, ErrNotFound))
	require.True(t, errors.Is(st.Delete(ctx, "orders/выходы/a.xlsx"), ErrNotFound))
}

func TestHelpers(t *testing.T) {
	require.True(t, HasExt("a/B.XLSX", ".xlsx", ".csv"))
	require.False(t, HasExt("a/b.txt", ".xlsx"))
	require.True(t, IsLockFile("Листы/~$book.xlsx"))
	require.False(t, IsLockFile("Листы/book.xlsx"))
	require.Equal(t, XLSXContentType, ContentTypeFor("x.xlsx"))
	require.Equal(t, "image/png", ContentTypeFor("qr.png"))
}

// memS3 is an in-memory bucket that pages listings two keys at a time.
type memS3 struct {
	objects map[string][]byte
	types   map[string]string
	pages   int
}

func newMemS3() *memS3 {
	return &memS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := m.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *memS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.objects[aws.ToString(in.Key)] = data
	m.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (m *memS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(m.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (m *memS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	m.pages++
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if in.ContinuationToken != nil {
		start, _ = strconv.Atoi(*in.ContinuationToken)
	}
	end := min(start+2, len(keys))
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func TestS3ListPaginatesAndSkipsFolders(t *testing.T) {
	ctx := context.Background()
	mem := newMemS3()
	st := newS3WithClient(mem, "bucket")

	for _, k := range []string{"orders/выходы/", "orders/выходы/1.xlsx", "orders/выходы/2.xlsx", "orders/выходы/3.csv", "orders/x.xlsx"} {
		mem.objects[k] = []byte(k)
	}

	keys, err := st.List(ctx, "orders/выходы/")
	require.NoError(t, err)
	require.Equal(t, []string{"orders/выходы/1.xlsx", "orders/выходы/2.xlsx", "orders/выходы/3.csv"}, keys)
	require.Equal(t, 2, mem.pages)
}

func TestS3GetPutDelete(t *testing.T) {
	ctx := context.Background()
	mem := newMemS3()
	st := newS3WithClient(mem, "bucket")

	require.NoError(t, st.Put(ctx, "supplies/active/A.xlsx", []byte("x"), ""))
	require.Equal(t, XLSXContentType, mem.types["supplies/active/A.xlsx"])

	data, err := st.Get(ctx, "supplies/active/A.xlsx")
	require.NoError(t, err)
	require.Equal(t, []byte("x"), data)

	require.NoError(t, st.Delete(ctx, "supplies/active/A.xlsx"))
	_, err = st.Get(ctx, "supplies/active/A.xlsx")
	require.True(t, errors.Is(err, ErrNotFound))
	require.Equal(t, "s3://bucket/k", st.Describe("k"))
}

type mockS3 struct {
	memS3
	mock.Mock
}

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(aws.ToString(in.Bucket), aws.ToString(in.Key))
	return nil, args.Error(0)
}

func TestS3PutWrapsErrors(t *testing.T) {
	m := &mockS3{memS3: *newMemS3()}
	m.On("PutObject", "bucket", "a.xlsx").Return(errors.New("access denied")).Once()

	err := newS3WithClient(m, "bucket").Put(context.Background(), "a.xlsx", []byte("x"), XLSXContentType)
	require.Error(t, err)
	require.Contains(t, err.Error(), "s3://bucket/a.xlsx")
	require.Contains(t, err.Error(), "access denied")
	m.AssertExpectations(t)
}
