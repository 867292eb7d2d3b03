package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/yhkl-dev/PreviewCLI/store"
)

var sectionOptions = []string{"New Release", "Featured"}

// FormView hosts the add album and add singer dialogs
type FormView struct {
	app      *App
	form     *tview.Form
	isActive bool
}

// NewFormView creates the dialog host
func NewFormView(app *App) *FormView {
	fv := &FormView{app: app}
	fv.form = tview.NewForm()
	fv.form.SetBorder(true).
		SetBorderColor(tcell.ColorLightGreen)
	return fv
}

// ShowAddAlbum opens the add album dialog
func (fv *FormView) ShowAddAlbum() {
	fv.form.Clear(true)
	fv.form.SetTitle(" Add New Album ")
	fv.form.
		AddInputField("Title", "", 40, nil, nil).
		AddInputField("Artist", "", 40, nil, nil).
		AddInputField("Cover URL", "", 40, nil, nil).
		AddDropDown("Section", sectionOptions, 0, nil).
		AddButton("Add", func() {
			title := fv.text("Title")
			artist := fv.text("Artist")
			cover := fv.text("Cover URL")
			section := store.SectionNew
			if idx, _ := fv.form.GetFormItemByLabel("Section").(*tview.DropDown).GetCurrentOption(); idx == 1 {
				section = store.SectionFeatured
			}
			fv.submit(" Add New Album", func() error {
				_, err := fv.app.store.AddAlbum(title, artist, cover, section)
				return err
			})
		}).
		AddButton("Cancel", fv.Close)
	fv.show()
}

// ShowAddSinger opens the add singer dialog
func (fv *FormView) ShowAddSinger() {
	fv.form.Clear(true)
	fv.form.SetTitle(" Add New Singer ")
	fv.form.
		AddInputField("Name", "", 40, nil, nil).
		AddInputField("Image URL", "", 40, nil, nil).
		AddButton("Add", func() {
			name, image := fv.text("Name"), fv.text("Image URL")
			fv.submit(" Add New Singer", func() error {
				_, err := fv.app.store.AddSinger(name, image)
				return err
			})
		}).
		AddButton("Cancel", fv.Close)
	fv.show()
}

// Close hides the dialog
func (fv *FormView) Close() {
	fv.isActive = false
	fv.app.closeModal()
}

// IsActive returns whether a dialog is open
func (fv *FormView) IsActive() bool {
	return fv.isActive
}

// submit runs add off the UI goroutine and closes the dialog on success
func (fv *FormView) submit(title string, add func() error) {
	fv.app.do(func() {
		err := add()
		fv.app.tviewApp.QueueUpdateDraw(func() {
			if err != nil {
				fv.form.SetTitle(title + ": " + err.Error() + " ")
				return
			}
			if fv.isActive {
				fv.Close()
			}
		})
	})
}

func (fv *FormView) show() {
	fv.isActive = true
	fv.app.showModal(fv.form, 60, 13)
	fv.app.tviewApp.SetFocus(fv.form)
}

func (fv *FormView) text(label string) string {
	if field, ok := fv.form.GetFormItemByLabel(label).(*tview.InputField); ok {
		return field.GetText()
	}
	return ""
}
