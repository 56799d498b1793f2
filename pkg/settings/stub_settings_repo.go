package settings

import "context"

type StubSettingsRepo struct {
	stored *Settings

	// Fail, when set, makes every call return it.
	Fail error
}

func NewStubSettingsRepo() *StubSettingsRepo {
	return &StubSettingsRepo{}
}

func (r *StubSettingsRepo) GetSettings(ctx context.Context) (Settings, error) {
	if r.Fail != nil {
		return Settings{}, r.Fail
	}
	if r.stored == nil {
		return DefaultSettings(), nil
	}
	return *r.stored, nil
}

func (r *StubSettingsRepo) StoreSettings(ctx context.Context, settings Settings) error {
	if r.Fail != nil {
		return r.Fail
	}
	r.stored = &settings
	return nil
}
