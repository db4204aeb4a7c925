package runtime

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// ConditionEvaluator evaluates onlyIf predicates with expr-lang.
//
// Expressions see:
//
//	properties   the project property tree (properties.deploy.region)
//	project      {name, dir}
//	task         {name, group, description}
//	null         alias for nil
//	defined(p)   true if property path p exists, even when its value is null
type ConditionEvaluator struct{}

func NewConditionEvaluator() *ConditionEvaluator {
	return &ConditionEvaluator{}
}

// Eval runs expression against the project and task and requires a boolean result.
func (e *ConditionEvaluator) Eval(expression string, project *Project, task Task) (bool, error) {
	env := map[string]any{
		"properties": project.Properties(),
		"project": map[string]any{
			"name": project.Name(),
			"dir":  project.Dir(),
		},
		"task": map[string]any{
			"name":        task.Name(),
			"group":       task.Group(),
			"description": task.Description(),
		},
		"null": nil,
	}

	definedFn := expr.Function(
		"defined",
		func(params ...any) (any, error) {
			path, ok := params[0].(string)
			if !ok {
				return false, fmt.Errorf("defined() expects string path argument, got %T", params[0])
			}
			_, exists := project.Property(path)
			return exists, nil
		},
		new(func(string) bool),
	)

	// expr.Env must come before AllowUndefinedVariables
	program, err := expr.Compile(expression,
		expr.Env(env),
		expr.AllowUndefinedVariables(),
		definedFn,
	)
	if err != nil {
		return false, fmt.Errorf("error compiling condition %q: %w", expression, err)
	}

	result, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("error evaluating condition %q: %w", expression, err)
	}

	ok, isBool := result.(bool)
	if !isBool {
		return false, fmt.Errorf("condition %q evaluated to %T, expected boolean", expression, result)
	}
	return ok, nil
}
