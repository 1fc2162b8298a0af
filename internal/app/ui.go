package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"yashubustudio/advisor/advisor"
	"yashubustudio/advisor/render"
)

const (
	logDebounceInterval = 150 * time.Millisecond
	logLineLimit        = 200
)

type uiState struct {
	service    *advisor.Service
	cfg        advisor.Config
	configPath string
	chart      *render.Chart

	w             fyne.Window
	input         *widget.Entry
	log           *widget.Entry
	status        *widget.Label
	progress      *widget.ProgressBar
	configSummary *widget.Label
	detail        *widget.Label
	chartImg      *canvas.Image
	resTbl        *widget.Table
	columns       []tableColumn
	rows          []resultRow
	selected      int
	statusBind    binding.String
	logBind       binding.String
	progressBind  binding.Float
	logLines      []string
	logMu         sync.Mutex
	logUpdateCh   chan struct{}

	predictBtn *widget.Button
	exportBtn  *widget.Button
	loadBtn    *widget.Button
	saveBtn    *widget.Button
}

func buildUI(a fyne.App, cfg advisor.Config, configPath string) *uiState {
	u := &uiState{cfg: cfg, configPath: configPath, selected: -1}
	u.chart = render.NewChart(cfg.Render)
	u.w = a.NewWindow("Complaint Response Advisor")

	u.statusBind = binding.NewString()
	_ = u.statusBind.Set("準備完了")
	u.progressBind = binding.NewFloat()
	u.logBind = binding.NewString()
	u.startLogUpdater()

	u.input = widget.NewMultiLineEntry()
	u.input.SetPlaceHolder("苦情の本文を入力（1行=1件）")
	u.input.Wrapping = fyne.TextWrapWord

	u.log = widget.NewEntryWithData(u.logBind)
	u.log.MultiLine = true
	u.log.Wrapping = fyne.TextWrapWord
	u.log.SetPlaceHolder("処理ログ")
	u.log.Disable()

	u.status = widget.NewLabelWithData(u.statusBind)
	u.progress = widget.NewProgressBarWithData(u.progressBind)
	u.progress.Hide()
	u.configSummary = widget.NewLabel("")
	u.configSummary.Wrapping = fyne.TextWrapWord

	u.detail = widget.NewLabel("行を選択すると詳細が表示されます")
	u.detail.Wrapping = fyne.TextWrapWord
	u.chartImg = canvas.NewImageFromImage(nil)
	u.chartImg.FillMode = canvas.ImageFillContain
	u.chartImg.SetMinSize(fyne.NewSize(float32(u.chart.Width())/2, float32(u.chart.Height())/2))

	u.predictBtn = widget.NewButtonWithIcon("推論実行", theme.ConfirmIcon(), func() { u.onPredict() })
	u.exportBtn = widget.NewButtonWithIcon("CSVエクスポート", theme.DocumentSaveIcon(), func() { u.onExport() })
	u.loadBtn = widget.NewButtonWithIcon("ファイル読込", theme.FolderOpenIcon(), func() { u.onLoadFile() })
	u.saveBtn = widget.NewButtonWithIcon("グラフ保存", theme.MediaPhotoIcon(), func() { u.onSaveChart() })
	settingsBtn := widget.NewButtonWithIcon("設定", theme.SettingsIcon(), func() { u.openSettings() })

	u.resTbl = widget.NewTable(
		func() (int, int) {
			cols := len(u.columns)
			if cols == 0 {
				cols = 1
			}
			return len(u.rows) + 1, cols
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			lbl := obj.(*widget.Label)
			if id.Row == 0 {
				if id.Col < len(u.columns) {
					lbl.SetText(u.columns[id.Col].Title)
				} else {
					lbl.SetText("")
				}
				lbl.Alignment = fyne.TextAlignCenter
				lbl.TextStyle = fyne.TextStyle{Bold: true}
				return
			}
			lbl.TextStyle = fyne.TextStyle{}
			lbl.Alignment = fyne.TextAlignLeading
			rowIdx := id.Row - 1
			if rowIdx >= len(u.rows) || id.Col >= len(u.columns) {
				lbl.SetText("")
				return
			}
			lbl.SetText(u.columns[id.Col].Render(u.rows[rowIdx]))
		},
	)
	u.resTbl.OnSelected = func(id widget.TableCellID) {
		if id.Row <= 0 {
			return
		}
		u.showDetail(id.Row - 1)
	}

	controlRow1 := container.NewGridWithColumns(3, u.predictBtn, u.exportBtn, settingsBtn)
	controlRow2 := container.NewGridWithColumns(2, u.loadBtn, u.saveBtn)
	left := container.NewVBox(
		widget.NewLabelWithStyle("苦情テキスト", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewStack(u.input),
		controlRow1,
		controlRow2,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("進捗", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		u.progress,
		u.status,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("設定サマリ", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		u.configSummary,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("ログ", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewStack(u.log),
	)

	detailPane := container.NewHSplit(container.NewVScroll(u.detail), u.chartImg)
	detailPane.Offset = 0.35
	right := container.NewVSplit(u.resTbl, detailPane)
	right.Offset = 0.55
	split := container.NewHSplit(left, right)
	split.Offset = 0.3

	u.w.SetContent(split)
	u.w.Resize(fyne.NewSize(1280, 800))
	u.enableControls(false)
	return u
}

// attach connects a loaded service and enables the controls.
func (u *uiState) attach(svc *advisor.Service) {
	u.service = svc
	u.columns = makeColumns(svc.Schema().ResponseTypes)
	u.applyColumnWidths()
	u.updateConfigSummary()
	u.enableControls(true)
	u.appendLog("モデルを読み込みました")
}

func (u *uiState) showFatal(err error) {
	u.w.SetContent(widget.NewLabel(err.Error()))
	dialog.ShowError(err, u.w)
	u.w.ShowAndRun()
}

func (u *uiState) applyColumnWidths() {
	for i, col := range u.columns {
		u.resTbl.SetColumnWidth(i, col.Width)
	}
	u.resTbl.Refresh()
}

func (u *uiState) setBusy(b bool) {
	fyne.Do(func() { u.enableControls(!b) })
}

func (u *uiState) enableControls(on bool) {
	for _, btn := range []*widget.Button{u.predictBtn, u.exportBtn, u.loadBtn, u.saveBtn} {
		if on {
			btn.Enable()
		} else {
			btn.Disable()
		}
	}
}

func (u *uiState) appendLog(msg string) {
	u.pushLogLine(fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), msg))
}

func (u *uiState) pushLogLine(line string) {
	u.logMu.Lock()
	u.logLines = append(u.logLines, line)
	if len(u.logLines) > logLineLimit {
		u.logLines = u.logLines[len(u.logLines)-logLineLimit:]
	}
	u.logMu.Unlock()

	if u.logUpdateCh == nil {
		u.flushLog()
		return
	}
	select {
	case u.logUpdateCh <- struct{}{}:
	default:
	}
}

func (u *uiState) startLogUpdater() {
	if u.logUpdateCh != nil {
		return
	}
	u.logUpdateCh = make(chan struct{}, 1)
	go u.logUpdateLoop()
}

func (u *uiState) logUpdateLoop() {
	timer := time.NewTimer(logDebounceInterval)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-u.logUpdateCh:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(logDebounceInterval)
		case <-timer.C:
			u.flushLog()
		}
	}
}

func (u *uiState) flushLog() {
	u.logMu.Lock()
	text := strings.Join(u.logLines, "\n")
	u.logMu.Unlock()
	_ = u.logBind.Set(text)
}

func (u *uiState) setStatus(text string) {
	_ = u.statusBind.Set(text)
}

func (u *uiState) updateConfigSummary() {
	schema := u.service.Schema()
	chart := "OFF"
	if u.cfg.Render.Enabled {
		chart = u.cfg.Render.Path
	}
	u.configSummary.SetText(fmt.Sprintf("成果物:%s / 応答種別:%d / 製品:%d / 閾値:%.2f / マージン:%.2f / グラフ自動保存:%s",
		u.cfg.Artifacts.Dir, len(schema.ResponseTypes), len(schema.ProductLabels),
		advisor.EscalationThreshold, advisor.SelectionMargin, chart))
}

func (u *uiState) onPredict() {
	lines := splitNonEmptyLines(u.input.Text)
	if len(lines) == 0 {
		dialog.ShowInformation("情報", "入力テキストが空です", u.w)
		return
	}
	total := len(lines)
	fyne.Do(func() {
		u.progress.Min = 0
		u.progress.Max = float64(total)
		u.progress.Show()
	})
	_ = u.progressBind.Set(0)
	u.setStatus("処理中...")
	u.setBusy(true)
	u.appendLog(fmt.Sprintf("推論開始 (%d件)", total))
	start := time.Now()

	go func(entries []string) {
		results, err := u.service.PredictAll(context.Background(), entries, func(done, total int) {
			_ = u.progressBind.Set(float64(done))
			u.setStatus(fmt.Sprintf("処理中 %d/%d", done, total))
		})

		u.setBusy(false)
		fyne.Do(func() { u.progress.Hide() })
		if err != nil {
			fyne.Do(func() { dialog.ShowError(err, u.w) })
			u.setStatus("エラー")
			u.appendLog(fmt.Sprintf("エラー: %v", err))
			return
		}
		rows := make([]resultRow, len(results))
		failed := 0
		for i, res := range results {
			rows[i] = resultRow{Index: strconv.Itoa(i + 1), Text: entries[i], Result: res}
			if res.Err != nil {
				failed++
			}
		}
		fyne.Do(func() {
			u.rows = rows
			u.selected = -1
			u.resTbl.Refresh()
			if len(rows) > 0 {
				u.showDetail(0)
			}
		})
		elapsed := time.Since(start).Seconds()
		u.setStatus(fmt.Sprintf("完了 %d件 (%.1fs)", len(rows), elapsed))
		u.appendLog(fmt.Sprintf("推論完了 %d件 失敗 %d件 (%.1fs)", len(rows), failed, elapsed))
	}(lines)
}

// showDetail fills the detail pane and draws the chart for one row. It runs on the UI thread.
func (u *uiState) showDetail(idx int) {
	if idx < 0 || idx >= len(u.rows) {
		return
	}
	u.selected = idx
	row := u.rows[idx]
	if row.Result.Err != nil {
		u.detail.SetText(fmt.Sprintf("本文:\n%s\n\nエラー: %v", row.Text, row.Result.Err))
		u.chartImg.Image = nil
		u.chartImg.Refresh()
		return
	}
	pred := row.Result.Prediction
	u.detail.SetText(describePrediction(pred) + "\n本文:\n" + row.Text)
	img, err := u.chart.Image(pred.Escalation, advisor.EscalationThreshold)
	if err != nil {
		u.appendLog(fmt.Sprintf("グラフ描画に失敗しました: %v", err))
		u.chartImg.Image = nil
	} else {
		u.chartImg.Image = img
	}
	u.chartImg.Refresh()
	if u.cfg.Render.Enabled {
		u.saveChart(pred)
	}
}

func (u *uiState) onSaveChart() {
	if u.selected < 0 || u.selected >= len(u.rows) || u.rows[u.selected].Result.Err != nil {
		dialog.ShowInformation("情報", "保存できる結果が選択されていません", u.w)
		return
	}
	u.saveChart(u.rows[u.selected].Result.Prediction)
}

func (u *uiState) saveChart(pred advisor.Prediction) {
	path, err := u.chart.Render(pred.Escalation, advisor.EscalationThreshold)
	if err != nil {
		u.appendLog(fmt.Sprintf("グラフ保存に失敗しました: %v", err))
		return
	}
	u.appendLog(fmt.Sprintf("グラフを保存しました: %s", path))
}

func (u *uiState) onExport() {
	if len(u.rows) == 0 {
		dialog.ShowInformation("情報", "出力データがありません", u.w)
		return
	}
	rows := u.rows
	fd := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil || uc == nil {
			return
		}
		defer uc.Close()
		records := make([]advisor.ComplaintRecord, len(rows))
		results := make([]advisor.PredictionResult, len(rows))
		for i, r := range rows {
			records[i] = advisor.ComplaintRecord{Index: r.Index, Narrative: r.Text}
			results[i] = r.Result
		}
		if err := advisor.WritePredictionsCSV(uc, u.service.Schema(), records, results); err != nil {
			dialog.ShowError(err, u.w)
			return
		}
		u.appendLog(fmt.Sprintf("CSVエクスポート完了 (%d件)", len(rows)))
	}, u.w)
	fd.SetFileName("predictions.csv")
	fd.Show()
}

func (u *uiState) onLoadFile() {
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		path := rc.URI().Path()
		rc.Close()
		records, err := advisor.ParseComplaintRecords(path, advisor.RecordParseOptions{}, u.cfg.Columns)
		if err != nil {
			dialog.ShowError(err, u.w)
			return
		}
		lines := make([]string, 0, len(records))
		for _, rec := range records {
			lines = append(lines, strings.Join(strings.Fields(rec.Narrative), " "))
		}
		u.input.SetText(strings.Join(lines, "\n"))
		u.appendLog(fmt.Sprintf("ファイル読込: %s (%d件)", filepath.Base(path), len(lines)))
	}, u.w)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".txt", ".csv", ".tsv"}))
	fd.Show()
}

func (u *uiState) openSettings() {
	cfg := u.cfg
	autoSave := widget.NewCheck("推論結果のグラフを自動保存する", nil)
	autoSave.SetChecked(cfg.Render.Enabled)
	pathEntry := widget.NewEntry()
	pathEntry.SetText(cfg.Render.Path)
	widthEntry := widget.NewEntry()
	widthEntry.SetText(strconv.Itoa(cfg.Render.Width))
	heightEntry := widget.NewEntry()
	heightEntry.SetText(strconv.Itoa(cfg.Render.Height))

	form := &widget.Form{Items: []*widget.FormItem{
		{Text: "グラフ自動保存", Widget: autoSave},
		{Text: "保存先", Widget: pathEntry},
		{Text: "幅(px)", Widget: widthEntry},
		{Text: "高さ(px)", Widget: heightEntry},
	}}

	dialog.NewCustomConfirm("設定", "OK", "キャンセル", form, func(ok bool) {
		if !ok {
			return
		}
		newCfg := cfg.Clone()
		newCfg.Render.Enabled = autoSave.Checked
		if p := strings.TrimSpace(pathEntry.Text); p != "" {
			newCfg.Render.Path = p
		}
		if v, err := strconv.Atoi(strings.TrimSpace(widthEntry.Text)); err == nil && v > 0 {
			newCfg.Render.Width = v
		}
		if v, err := strconv.Atoi(strings.TrimSpace(heightEntry.Text)); err == nil && v > 0 {
			newCfg.Render.Height = v
		}
		if err := advisor.SaveConfig(u.configPath, newCfg); err != nil {
			dialog.ShowError(err, u.w)
			return
		}
		u.cfg = newCfg
		u.chart = render.NewChart(newCfg.Render)
		u.updateConfigSummary()
		u.appendLog("設定を更新しました")
	}, u.w).Show()
}
