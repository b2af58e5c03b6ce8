// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidateDocument validates a ProgramDocument according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - Text must not be empty
//
// NOT validated:
//   - Metadata (empty metadata values are legal; the source catalog treats
//     missing cells as empty strings)
func ValidateDocument(doc *ProgramDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyDocumentID)
	}

	if doc.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyDocumentText)
	}

	return nil
}

// ValidateResultCount validates a requested search result count.
func ValidateResultCount(k int) error {
	if k <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidResultCount, k)
	}
	return nil
}
