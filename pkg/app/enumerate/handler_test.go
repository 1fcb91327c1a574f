package enumerate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-ntfs/internal/testutil"
	"github.com/deploymenttheory/go-ntfs/internal/types"
	"github.com/deploymenttheory/go-ntfs/pkg/app"
)

// writeVolume renders a small directory tree and writes it to a temp image
func writeVolume(t *testing.T) string {
	t.Helper()
	vol := testutil.DefaultVolume()
	root := types.NewFileReference(types.RecordRoot, 5)
	docs := types.NewFileReference(30, 1)

	vol.PutFile(testutil.FileSpec{Number: types.RecordRoot, Sequence: 5, Parent: root, Name: ".", Directory: true})
	vol.PutFile(testutil.FileSpec{Number: 30, Parent: root, Name: "docs", Directory: true})
	vol.PutFile(testutil.FileSpec{
		Number: 31, Parent: docs, Name: "Report.PDF",
		Extra: [][]byte{testutil.NonResidentAttr(testutil.NonResidentSpec{
			Type: types.AttributeData, ID: 2,
			Runs:     []types.DataRun{{Length: 1, LCN: 200}},
			RealSize: 3000, InitializedSize: 3000, ClusterSize: 4096,
		})},
	})
	vol.PutFile(testutil.FileSpec{
		Number: 32, Parent: root, Name: "notes.txt",
		Extra: [][]byte{
			testutil.ResidentAttr(types.AttributeData, "", 2, []byte("hello")),
			testutil.ResidentAttr(types.AttributeData, "Zone.Identifier", 3, []byte("[ZoneTransfer]")),
		},
	})
	vol.PutFile(testutil.FileSpec{
		Number: 33, Parent: root, Name: "old.txt", Unused: true,
		Extra: [][]byte{testutil.ResidentAttr(types.AttributeData, "", 2, []byte("gone"))},
	})

	path := filepath.Join(t.TempDir(), "volume.img")
	require.NoError(t, os.WriteFile(path, vol.Bytes(), 0o600))
	return path
}

func names(files []FileResult) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}

func TestHandle(t *testing.T) {
	image := writeVolume(t)

	tests := []struct {
		name      string
		request   Request
		wantPaths []string
		validate  func(*testing.T, *Response)
	}{
		{
			name:      "user files",
			request:   Request{MaxResults: DefaultMaxResults},
			wantPaths: []string{"/docs", "/docs/Report.PDF", "/notes.txt"},
			validate: func(t *testing.T, resp *Response) {
				assert.Equal(t, 3, resp.TotalFound)
				assert.Equal(t, "directory", resp.Files[0].Type)
				assert.Equal(t, int64(0), resp.Files[0].Size)

				report := resp.Files[1]
				assert.Equal(t, uint64(31), report.Record)
				assert.Equal(t, int64(3000), report.Size)
				assert.Equal(t, "pdf", report.Extension)
				assert.Equal(t, testutil.Epoch, report.Modified)

				notes := resp.Files[2]
				assert.Equal(t, int64(5), notes.Size)
				assert.Equal(t, []string{"Zone.Identifier"}, notes.Streams)

				assert.Equal(t, uint32(4096), resp.VolumeInfo.ClusterSize)
				assert.Equal(t, uint32(1024), resp.VolumeInfo.RecordSize)
				assert.Equal(t, uint64(64), resp.VolumeInfo.RecordCount)
				assert.Greater(t, resp.Scan.Visited, int64(0))
			},
		},
		{
			name:      "deleted records",
			request:   Request{IncludeDeleted: true, Extensions: []string{".TXT"}, MaxResults: DefaultMaxResults},
			wantPaths: []string{"/notes.txt", "/old.txt"},
			validate: func(t *testing.T, resp *Response) {
				assert.False(t, resp.Files[0].Deleted)
				assert.True(t, resp.Files[1].Deleted)
			},
		},
		{
			name:      "system files",
			request:   Request{IncludeSystem: true, NamePattern: "$*", MaxResults: DefaultMaxResults},
			wantPaths: []string{"/$MFT"},
		},
		{
			name:      "case insensitive pattern",
			request:   Request{NamePattern: "report.*", MaxResults: DefaultMaxResults},
			wantPaths: []string{"/docs/Report.PDF"},
		},
		{
			name:      "case sensitive pattern",
			request:   Request{NamePattern: "report.*", CaseSensitive: true, MaxResults: DefaultMaxResults},
			wantPaths: []string{},
		},
		{
			name:      "regex",
			request:   Request{NameRegex: `^NOTES\.`, MaxResults: DefaultMaxResults},
			wantPaths: []string{"/notes.txt"},
		},
		{
			name:      "size range",
			request:   Request{MinSize: "1KB", MaxSize: "1MB", MaxResults: DefaultMaxResults},
			wantPaths: []string{"/docs/Report.PDF"},
		},
		{
			name:      "modified before fixture epoch",
			request:   Request{ModifiedBefore: "2019-12-31", MaxResults: DefaultMaxResults},
			wantPaths: []string{},
		},
		{
			name:      "truncated",
			request:   Request{MaxResults: 1},
			wantPaths: []string{"/docs"},
			validate: func(t *testing.T, resp *Response) {
				assert.True(t, resp.Truncated)
				assert.Equal(t, 3, resp.TotalFound)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.request
			req.Target = app.ImageTarget{Path: image}

			resp, err := Handle(app.NewContext(), &req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPaths, names(resp.Files))
			if tt.validate != nil {
				tt.validate(t, resp)
			}
		})
	}
}

func TestHandleErrors(t *testing.T) {
	notNTFS := filepath.Join(t.TempDir(), "zero.img")
	require.NoError(t, os.WriteFile(notNTFS, make([]byte, 64*1024), 0o600))

	tests := []struct {
		name     string
		request  Request
		wantCode string
	}{
		{
			name:     "missing image path",
			request:  Request{MaxResults: 10},
			wantCode: app.ErrCodeInvalidInput,
		},
		{
			name:     "missing file",
			request:  Request{Target: app.ImageTarget{Path: filepath.Join(t.TempDir(), "absent.img")}, MaxResults: 10},
			wantCode: app.ErrCodeImageAccess,
		},
		{
			name:     "not an NTFS image",
			request:  Request{Target: app.ImageTarget{Path: notNTFS}, MaxResults: 10},
			wantCode: app.ErrCodeImageAccess,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Handle(app.NewContext(), &tt.request)
			require.Error(t, err)

			var appErr *app.CommonError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantCode, appErr.Code)
		})
	}
}

func TestHandleProgress(t *testing.T) {
	ctx := app.NewContext()
	var steps []int
	ctx.SetProgress(func(_ string, percent int) {
		steps = append(steps, percent)
	})

	_, err := Handle(ctx, &Request{Target: app.ImageTarget{Path: writeVolume(t)}, MaxResults: 10})
	require.NoError(t, err)
	assert.Equal(t, []int{5, 25, 90, 100}, steps)
}
