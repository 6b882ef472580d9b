// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package shutil

import shellquote "github.com/kballard/go-shellquote"

// Join joins command line args to a single string, quoting args as
// needed so the result can be pasted into a shell to rerun the command.
func Join(args []string) string {
	return shellquote.Join(args...)
}
