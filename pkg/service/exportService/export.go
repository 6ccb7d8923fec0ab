package exportService

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/pulseone/pulse-admin/internal/validator"
	"github.com/pulseone/pulse-admin/pkg/clients/pulseone"
	"github.com/pulseone/pulse-admin/pkg/service/types"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

const (
	ExportTargetsPath = "/api/export/targets"
	ExportJobsPath    = "/api/export/jobs"
)

type ExportService struct {
	client *pulseone.Client
	logger *zap.Logger

	// progressOutput receives the download progress bar; nil disables it.
	progressOutput io.Writer
}

func NewExportService(client *pulseone.Client, logger *zap.Logger, progressOutput io.Writer) *ExportService {
	return &ExportService{
		client:         client,
		logger:         logger,
		progressOutput: progressOutput,
	}
}

func targetPath(id int, suffix string) string {
	return fmt.Sprintf("%s/%d%s", ExportTargetsPath, id, suffix)
}

func jobPath(id int, suffix string) string {
	return fmt.Sprintf("%s/%d%s", ExportJobsPath, id, suffix)
}

func (es *ExportService) ListTargets(ctx context.Context, filter *types.ExportTargetFilter, page *types.Pagination) (*pulseone.ListResponse[types.ExportTarget], error) {
	q := types.ExportTargetFilter{}
	if filter != nil {
		q = *filter
	}
	q.PageQuery = page.Query()

	res, err := pulseone.GetList[types.ExportTarget](ctx, es.client, ExportTargetsPath, &q)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list export targets")
	}
	return res, nil
}

// CreateTarget validates the request locally; the target type is matched case-insensitively.
func (es *ExportService) CreateTarget(ctx context.Context, req *types.CreateExportTargetRequest) (*types.ExportTarget, error) {
	normalized := *req
	normalized.TargetType = strings.ToUpper(strings.TrimSpace(req.TargetType))
	if err := validator.ValidateRequest(&normalized); err != nil {
		return nil, err
	}

	target := &types.ExportTarget{}
	if err := es.client.Post(ctx, ExportTargetsPath, &normalized, target); err != nil {
		return nil, errors.Wrap(err, "failed to create export target")
	}
	es.logger.Sugar().Infow("Created export target",
		zap.Int("id", target.Id),
		zap.String("type", target.TargetType),
	)
	return target, nil
}

func (es *ExportService) DeleteTarget(ctx context.Context, id int) error {
	if err := es.client.Delete(ctx, targetPath(id, ""), nil); err != nil {
		return errors.Wrapf(err, "failed to delete export target %d", id)
	}
	return nil
}

func (es *ExportService) TestTarget(ctx context.Context, id int) (*types.TargetTestResult, error) {
	res := &types.TargetTestResult{}
	if err := es.client.Post(ctx, targetPath(id, "/test"), nil, res); err != nil {
		return nil, errors.Wrapf(err, "failed to test export target %d", id)
	}
	return res, nil
}

func (es *ExportService) CreateJob(ctx context.Context, req *types.CreateExportJobRequest) (*types.ExportJob, error) {
	if err := validator.ValidateRequest(req); err != nil {
		return nil, err
	}
	job := &types.ExportJob{}
	if err := es.client.Post(ctx, ExportJobsPath, req, job); err != nil {
		return nil, errors.Wrap(err, "failed to create export job")
	}
	es.logger.Sugar().Infow("Created export job",
		zap.Int("id", job.Id),
		zap.String("format", job.Format),
	)
	return job, nil
}

func (es *ExportService) ListJobs(ctx context.Context, filter *types.ExportJobFilter, page *types.Pagination) (*pulseone.ListResponse[types.ExportJob], error) {
	q := types.ExportJobFilter{}
	if filter != nil {
		q = *filter
	}
	q.PageQuery = page.Query()

	res, err := pulseone.GetList[types.ExportJob](ctx, es.client, ExportJobsPath, &q)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list export jobs")
	}
	return res, nil
}

func (es *ExportService) GetJob(ctx context.Context, id int) (*types.ExportJob, error) {
	job := &types.ExportJob{}
	if err := es.client.Get(ctx, jobPath(id, ""), nil, job); err != nil {
		return nil, errors.Wrapf(err, "failed to get export job %d", id)
	}
	return job, nil
}

// Download streams the file of a completed export job into out and returns the number of
// bytes written.
func (es *ExportService) Download(ctx context.Context, id int, out io.Writer) (int64, error) {
	body, size, err := es.client.Stream(ctx, jobPath(id, "/download"))
	if err != nil {
		return 0, errors.Wrapf(err, "failed to download export job %d", id)
	}
	defer body.Close()

	dest := out
	if es.progressOutput != nil {
		bar := progressbar.NewOptions64(size,
			progressbar.OptionSetWriter(es.progressOutput),
			progressbar.OptionSetDescription(fmt.Sprintf("downloading export %d", id)),
			progressbar.OptionShowBytes(true),
			progressbar.OptionThrottle(0),
			progressbar.OptionOnCompletion(func() {
				_, _ = fmt.Fprintln(es.progressOutput)
			}),
		)
		defer func() {
			_ = bar.Finish()
		}()
		dest = io.MultiWriter(out, bar)
	}

	n, err := io.Copy(dest, body)
	if err != nil {
		return n, errors.Wrapf(err, "failed to write export job %d", id)
	}
	es.logger.Sugar().Debugw("Downloaded export", zap.Int("id", id), zap.Int64("bytes", n))
	return n, nil
}

// WriteCSV writes rows as CSV with a header derived from the rows' csv struct tags.
func WriteCSV[T any](w io.Writer, rows []T) error {
	if err := gocsv.Marshal(rows, w); err != nil {
		return errors.Wrap(err, "failed to write CSV")
	}
	return nil
}
