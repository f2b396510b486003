package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplateHash(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", TemplateHash(""))
	assert.Equal(t, TemplateHash(""), TemplateHash("   "))
	assert.Equal(t, TemplateHash(""), TemplateHash("\t\n"))
	assert.Equal(t, TemplateHash("Improve attendance"), TemplateHash("  Improve attendance "))
	assert.NotEqual(t, TemplateHash("Improve attendance"), TemplateHash("improve attendance"))
}
