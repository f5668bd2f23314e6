package main

import (
	"testing"

	"github.com/meridian-erp/meridian-erp/internal/app"
	_ "github.com/meridian-erp/meridian-erp/internal/testing/guard"
)

func TestMainSkipsStartupInTestMode(t *testing.T) {
	app.RefreshTestMode()
	if !app.InTestMode() {
		t.Fatal("expected test mode to be active under the test guard")
	}
	main()
}
