package tooltl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/tooltl/tooltl/utils"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// ErrUnsupported is returned when a single destination file is not an SVG file.
var ErrUnsupported = errors.New("file type not supported")

// Supported files
var validExtensions = []string{".svg"}

// Ops describes a batch run of the normalizer.
type Ops struct {
	// Src is an SVG file, a directory walked recursively or the pipe name.
	Src string
	// Dst is the output file or directory. An empty Dst rewrites the sources in
	// place, or writes to the standard output when reading from the pipe.
	Dst      string
	PipeName string
	Workers  int
	// Quiet disables the progress indicator and the status lines.
	Quiet bool
}

// Failure is a file which could not be normalized.
type Failure struct {
	Path string
	Err  error
}

// Summary reports the outcome of a batch run.
type Summary struct {
	Processed int
	Failed    []Failure
	Warnings  int
	Elapsed   time.Duration
}

// Err joins the errors of the failed files.
func (s Summary) Err() error {
	errs := make([]error, 0, len(s.Failed))
	for _, f := range s.Failed {
		errs = append(errs, fmt.Errorf("%s: %w", f.Path, f.Err))
	}
	return errors.Join(errs...)
}

// result holds the relevant information about the normalization of a single file.
type result struct {
	path   string
	report Report
	err    error
}

// Execute normalizes the files described by op. A failing file does not stop
// the batch: it is recorded in the summary. The returned error is reserved
// for failures of the run itself, like a missing source or a cancelled context.
func (n *Normalizer) Execute(ctx context.Context, op *Ops) (Summary, error) {
	now := time.Now()

	if op.Src == op.PipeName && op.PipeName != "" {
		sum, err := n.executePipe(op)
		sum.Elapsed = time.Since(now)
		return sum, err
	}

	fi, err := os.Stat(op.Src)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load the source: %w", err)
	}

	var sum Summary
	switch mode := fi.Mode(); {
	case mode.IsDir():
		sum, err = n.executeDir(ctx, op)
	case mode.IsRegular():
		sum, err = n.executeFile(op)
	default:
		err = fmt.Errorf("%s: %w", op.Src, ErrUnsupported)
	}
	sum.Elapsed = time.Since(now)
	return sum, err
}

func (n *Normalizer) executePipe(op *Ops) (Summary, error) {
	var sum Summary
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return sum, errors.New("`-` should be used with a pipe for stdin")
	}

	var buf bytes.Buffer
	rep, err := n.Process(os.Stdin, &buf)
	if err != nil {
		sum.Failed = append(sum.Failed, Failure{Path: op.PipeName, Err: err})
		return sum, nil
	}
	sum.Processed++
	sum.Warnings += len(rep.Warnings)

	dst := op.Dst
	if dst == "" {
		dst = op.PipeName
	}
	return sum, op.write(dst, buf.Bytes())
}

func (n *Normalizer) executeFile(op *Ops) (Summary, error) {
	var sum Summary

	dst := op.Dst
	switch {
	case dst == "":
		dst = op.Src
	case dst == op.PipeName:
	default:
		if fi, err := os.Stat(dst); err == nil && fi.IsDir() {
			dst = filepath.Join(dst, filepath.Base(op.Src))
		} else if !utils.HasExtension(dst, validExtensions) {
			return sum, fmt.Errorf("%v: %w", filepath.Ext(dst), ErrUnsupported)
		}
	}

	spinner := op.startSpinner("⇢ normalizing icon...")
	res := n.process(op, op.Src, dst)
	op.stopSpinner(spinner, res)

	sum.add(res)
	return sum, nil
}

func (n *Normalizer) executeDir(ctx context.Context, op *Ops) (Summary, error) {
	var sum Summary

	dest := op.Dst
	if dest == "" {
		dest = op.Src
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return sum, fmt.Errorf("unable to create the destination directory: %w", err)
	}

	// Limit the concurrently running workers to maxWorkers.
	workers := op.Workers
	if workers <= 0 || workers > maxWorkers {
		workers = utils.Min(runtime.NumCPU(), maxWorkers)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Process recursively the icons from the specified directory concurrently.
	ch := make(chan result)
	skip := ""
	if filepath.Clean(dest) != filepath.Clean(op.Src) {
		skip = dest
	}
	paths, errc := walkDir(ctx, op.Src, skip, validExtensions)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			n.consumer(ctx, op, dest, ch, paths)
		}()
	}

	// Close the channel after the values are consumed.
	go func() {
		defer close(ch)
		wg.Wait()
	}()

	spinner := op.startSpinner("⇢ normalizing icons...")
	for res := range ch {
		sum.add(res)
		if spinner != nil {
			spinner.SetMessage(utils.StatusLine(
				fmt.Sprintf("⇢ normalized %s...", utils.Plural(sum.Processed+len(sum.Failed), "icon")),
				utils.DefaultMessage,
			))
		}
	}
	if spinner != nil {
		spinner.Stop(utils.StatusLine(
			fmt.Sprintf("%s normalized ✔", utils.Plural(sum.Processed, "icon")),
			utils.SuccessMessage,
		))
	}
	op.printFailures(sum)

	if err := <-errc; err != nil {
		return sum, err
	}
	return sum, ctx.Err()
}

// consumer reads the path names from the paths channel and normalizes each file.
func (n *Normalizer) consumer(
	ctx context.Context,
	op *Ops,
	dest string,
	res chan<- result,
	paths <-chan string,
) {
	for src := range paths {
		rel, err := filepath.Rel(op.Src, src)
		if err != nil {
			rel = filepath.Base(src)
		}
		r := n.process(op, src, filepath.Join(dest, rel))

		select {
		case <-ctx.Done():
			return
		case res <- r:
		}
	}
}

// process normalizes a single file. The source is read entirely before the
// destination is written, which makes in place rewriting safe.
func (n *Normalizer) process(op *Ops, in, out string) result {
	res := result{path: in}

	data, err := os.ReadFile(in)
	if err != nil {
		res.err = fmt.Errorf("unable to open the source file: %w", err)
		return res
	}

	nz := *n
	if n.AutoPrefix && n.PrefixIDs == "" {
		nz.PrefixIDs = utils.SanitizeName(utils.Stem(in))
	}
	nz.Logger = n.logger().With(zap.String("file", in))

	var buf bytes.Buffer
	if res.report, res.err = nz.Process(bytes.NewReader(data), &buf); res.err != nil {
		return res
	}
	res.err = op.write(out, buf.Bytes())
	if res.err == nil {
		n.logger().Debug("normalized",
			zap.String("src", in),
			zap.String("dst", out),
			zap.String("viewBox", res.report.ViewBox),
			zap.Int("baked", res.report.Baked),
			zap.Int("prefixed", res.report.Prefixed),
		)
	}
	return res
}

// write stores the output in the destination file or writes it to the standard output.
func (op *Ops) write(out string, data []byte) error {
	if out != op.PipeName || op.PipeName == "" {
		return utils.WriteFileAtomic(out, data)
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("`-` should be used with a pipe for stdout")
	}
	_, err := io.Copy(os.Stdout, bytes.NewReader(data))
	return err
}

func (s *Summary) add(r result) {
	if r.err != nil {
		s.Failed = append(s.Failed, Failure{Path: r.path, Err: r.err})
		return
	}
	s.Processed++
	s.Warnings += len(r.report.Warnings)
}

func (op *Ops) startSpinner(msg string) *utils.Spinner {
	if op.Quiet || !utils.IsTerminal() {
		return nil
	}
	s := utils.NewSpinner(utils.StatusLine(msg, utils.DefaultMessage), time.Millisecond*80)
	s.Start()
	return s
}

func (op *Ops) stopSpinner(s *utils.Spinner, r result) {
	if s == nil {
		if r.err != nil && !op.Quiet {
			op.printFailures(Summary{Failed: []Failure{{Path: r.path, Err: r.err}}})
		}
		return
	}
	if r.err != nil {
		s.Stop(utils.StatusLine("normalizing icon failed... ✘", utils.ErrorMessage))
		op.printFailures(Summary{Failed: []Failure{{Path: r.path, Err: r.err}}})
		return
	}
	s.Stop(utils.StatusLine("the icon has been normalized successfully ✔", utils.SuccessMessage))
}

// printFailures displays the reason of every failed file.
func (op *Ops) printFailures(sum Summary) {
	if op.Quiet {
		return
	}
	for _, f := range sum.Failed {
		fmt.Fprintf(os.Stderr, "%s %s\n",
			utils.DecorateText(filepath.Base(f.Path), utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v", f.Err), utils.DefaultMessage),
		)
	}
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each supported file to a new channel.
// The skip directory, holding the output of the run, is not visited.
// It finishes in case the context is cancelled.
func walkDir(
	ctx context.Context,
	src, skip string,
	srcExts []string,
) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && skip != "" && filepath.Clean(path) == filepath.Clean(skip) {
				return filepath.SkipDir
			}
			if !d.Type().IsRegular() || !utils.HasExtension(path, srcExts) {
				return nil
			}
			select {
			case <-ctx.Done():
				return errors.New("directory walk cancelled")
			case pathChan <- path:
			}
			return nil
		})
	}()
	return pathChan, errChan
}
