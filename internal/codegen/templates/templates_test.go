package templates

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/ssfrr/embody/internal/codegen/signature"
)

func TestSectionHeader(t *testing.T) {
	want := "/************\n * Includes *\n ************/"
	assert.Equal(t, want, SectionHeader("Includes"))
}

func TestIncludeGuard(t *testing.T) {
	assert.Equal(t, "__FILLED_H", IncludeGuard("Filled.h"))
	assert.Equal(t, "__MY_MODULE_TEST_H", IncludeGuard("my_module.test.h"))
}

func TestRenderFakeHeader(t *testing.T) {
	got, err := Render(FakeHeader, FakeHeaderContext{IncludeGuard: "FAKEUART_H", Header: "uart.h"})
	require.NoError(t, err)

	want := `#ifndef FAKEUART_H
#define FAKEUART_H

#include "uart.h"

#endif /* FAKEUART_H */
`
	assert.Equal(t, want, got)
}

func TestRenderFakeSource(t *testing.T) {
	got, err := Render(FakeSource, FakeSourceContext{
		FakeInclude: "Fakeuart.h",
		Funcs: []signature.FunctionSignature{
			{Name: "uart_init", ReturnType: "int", Params: []signature.Param{{Type: "unsigned long", Name: "baud"}}},
			{Name: "uart_buffer", ReturnType: "char *"},
		},
	})
	require.NoError(t, err)

	want := `#include "Fakeuart.h"

int uart_init(unsigned long baud) {
}

char *uart_buffer(void) {
}
`
	assert.Equal(t, want, got)
}

func TestRenderFakeSourceWithoutFunctions(t *testing.T) {
	got, err := Render(FakeSource, FakeSourceContext{FakeInclude: "Fakeempty.h"})
	require.NoError(t, err)
	assert.Equal(t, "#include \"Fakeempty.h\"\n", got)
}

func TestRenderModuleHeader(t *testing.T) {
	got, err := Render(ModuleHeader, ModuleContext{
		ModuleName:      "Filled",
		Author:          "Spencer Russell",
		Year:            2015,
		Filename:        "Filled.h",
		UseIncludeGuard: true,
	})
	require.NoError(t, err)

	want := `/*
 * Filled module.
 *
 * Copyright 2015 Spencer Russell
 */

#ifndef __FILLED_H
#define __FILLED_H

/************
 * Includes *
 ************/

/*********************
 * Defines and Types *
 *********************/

/**********************************
 * Exported Function Declarations *
 **********************************/

#endif // __FILLED_H
`
	assert.Equal(t, want, got)
}

func TestRenderModuleCopyrightHolder(t *testing.T) {
	got, err := Render(ModuleSource, ModuleContext{
		ModuleName:      "uart",
		ProjectName:     "rover",
		Author:          "Ada",
		CopyrightHolder: "Acme Corp",
		Year:            2026,
		Filename:        "uart.c",
		Header:          "uart.h",
		ProjectIncludes: []string{"uart.h"},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "/*\n * uart module. Part of project rover.\n *\n * Copyright 2026 Acme Corp\n * Written by Ada\n */\n"), got)
	assert.Contains(t, got, "#include \"uart.h\"\n")
	assert.Contains(t, got, " * Exported Function Definitions *")
}

func filledContext(filename string) ModuleContext {
	return ModuleContext{
		ModuleName:      "FilledTest",
		Author:          "Spencer Russell",
		Year:            2015,
		Filename:        filename,
		UseIncludeGuard: filepath.Ext(filename) == ".h",
		SysIncludes:     []string{"stdio.h", "stdbool.h"},
		ProjectIncludes: []string{"OtherModule.h"},
		Defines:         []Define{{Name: "BUFLEN", Value: "32"}, {Name: "PI", Value: "3.14159"}},
		Types:           []string{"typedef struct {\n    float x;\n    float y;\n} point2"},
		ExportedFuncs: []string{
			"point2 point2_add(point2 p1, point2 p2)",
			"float point2_length(point2 p)",
			"void fill_point2(point2 *p, float x, float y)",
			"void noop(void)",
			"void *something(void *thing)",
		},
		StaticFuncs: []string{"static void process(void)", "static int *intfunc(float x)"},
	}
}

func TestRenderFilledModule(t *testing.T) {
	ar, err := txtar.ParseFile(filepath.Join("testdata", "filled.txtar"))
	require.NoError(t, err)
	require.Len(t, ar.Files, 2)

	tmpl := map[string]string{".c": ModuleSource, ".h": ModuleHeader}
	for _, f := range ar.Files {
		t.Run(f.Name, func(t *testing.T) {
			got, err := Render(tmpl[filepath.Ext(f.Name)], filledContext(f.Name))
			require.NoError(t, err)
			if diff := cmp.Diff(string(f.Data), got); diff != "" {
				t.Errorf("%s mismatch (-want +got):\n%s", f.Name, diff)
			}
		})
	}
}

func TestRenderModuleSections(t *testing.T) {
	got, err := Render(ModuleSource, ModuleContext{
		ModuleName: "led",
		Author:     "Ada",
		Year:       2026,
		Defines:    []Define{{Name: "LED_H_ONCE"}},
		StaticData: []string{"static int blink_count"},
	})
	require.NoError(t, err)

	assert.Contains(t, got, " *********************/\n\n#define LED_H_ONCE\n\n")
	assert.Contains(t, got, " * Static Data *\n ***************/\n\nstatic int blink_count;\n\n/****")
	assert.NotContains(t, got, "#include")
}

func TestRenderModuleWithoutStaticData(t *testing.T) {
	got, err := Render(ModuleSource, ModuleContext{ModuleName: "led", Author: "Ada", Year: 2026})
	require.NoError(t, err)
	assert.NotContains(t, got, "Static Data")
	assert.True(t, strings.HasSuffix(got, " * Static Function Definitions *\n *******************************/\n"), got)
}

func TestRenderModuleTest(t *testing.T) {
	got, err := Render(ModuleTest, ModuleContext{ModuleName: "uart", Author: "Ada", Year: 2026, Header: "uart.h"})
	require.NoError(t, err)

	assert.Contains(t, got, " * Tests for the uart module.\n")
	assert.Contains(t, got, "#include \"uart.h\"\n")
	assert.Contains(t, got, "TEST_GROUP(uartTests) {")
	assert.Contains(t, got, `FAIL("No tests for module uart");`)
}

func TestRenderUnknownTemplate(t *testing.T) {
	for _, name := range []string{"nope.c", "copyright", "common.tmpl"} {
		_, err := Render(name, nil)
		if !errors.Is(err, ErrUnknownTemplate) {
			t.Errorf("Render(%q): expected ErrUnknownTemplate, got %v", name, err)
		}
	}
}
